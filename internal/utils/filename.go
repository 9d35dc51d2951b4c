package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameLength = 200

var (
	// Line breaks and tabs become spaces before control characters are stripped
	whitespaceControls = regexp.MustCompile(`[\r\n\t]`)
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a client-supplied filename into a single safe path
// segment. Directory components are dropped and the extension is kept.
func SanitizeFilename(filename string) string {
	// Clients on Windows send backslash separated paths
	filename = strings.ReplaceAll(filename, `\`, "/")
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}

	filename = whitespaceControls.ReplaceAllString(filename, " ")
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)
	filename = strings.TrimLeft(filename, ".")

	if len(filename) > maxFilenameLength {
		ext := Extension(filename)
		if ext != "" && len(ext) < 16 {
			ext = "." + ext
		} else {
			ext = ""
		}
		cut := maxFilenameLength - len(ext)
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = strings.TrimSpace(filename[:cut]) + ext
	}

	if filename == "" {
		filename = "upload"
	}
	return filename
}

// Extension returns the lowercased text after the last dot, without the dot.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}
