package entities

type tagUpdateMode int

const (
	tagUpdateKeep tagUpdateMode = iota
	tagUpdateReplace
)

// TagUpdate says what to do with an entry's tag set. The zero value keeps the
// existing tags; ClearTags and ReplaceTags overwrite the whole set.
type TagUpdate struct {
	mode tagUpdateMode
	tags []string
}

// KeepTags leaves an entry's tags untouched.
func KeepTags() TagUpdate {
	return TagUpdate{}
}

// ReplaceTags replaces an entry's tag set with tags.
func ReplaceTags(tags ...string) TagUpdate {
	return TagUpdate{mode: tagUpdateReplace, tags: append([]string(nil), tags...)}
}

// ClearTags removes every tag from an entry.
func ClearTags() TagUpdate {
	return TagUpdate{mode: tagUpdateReplace}
}

// Keep reports whether the update leaves the tag set untouched.
func (u TagUpdate) Keep() bool {
	return u.mode == tagUpdateKeep
}

// Tags returns the replacement set. It is empty for Keep and Clear.
func (u TagUpdate) Tags() []string {
	return u.tags
}
