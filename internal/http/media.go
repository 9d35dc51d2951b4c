package http

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// MediaController serves files of the local media backend. Only files
// recorded on an entry of the requesting owner are served, so temp files of
// in-flight uploads and leftovers awaiting the sweep stay hidden.
type MediaController struct {
	store EntryStore
	dir   string
}

func NewMediaController(store EntryStore, dir string) *MediaController {
	return &MediaController{store: store, dir: dir}
}

// ServeMedia returns one stored file
// GET {prefix}/:entry_id/:name
func (mc *MediaController) ServeMedia(c *gin.Context) {
	entryID := c.Param("entry_id")
	name := c.Param("name")
	if !servableSegment(entryID) || !servableSegment(name) {
		respondNotFound(c, "media")
		return
	}

	entry, err := mc.store.Get(c.Request.Context(), GetOwnerID(c), entryID)
	if err != nil {
		respondInternalError(c, err, "serve media")
		return
	}
	if entry == nil {
		respondNotFound(c, "media")
		return
	}

	for _, m := range entry.Media {
		if filepath.Base(m.Filepath) == name {
			c.File(filepath.Join(mc.dir, entryID, name))
			return
		}
	}
	respondNotFound(c, "media")
}

func servableSegment(s string) bool {
	return s != "" && !strings.HasPrefix(s, ".") && !strings.ContainsAny(s, `/\`)
}
