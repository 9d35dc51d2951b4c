package entities

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// MediaTypeOrDefault returns t, or MediaTypeImage when no type was determined.
func MediaTypeOrDefault(t MediaType) MediaType {
	if t == "" {
		return MediaTypeImage
	}
	return t
}

type Entry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id" json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	EntryDate string    `gorm:"column:entry_date" json:"entry_date"` // user-controlled, compared lexically
	CreatedAt Timestamp `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt Timestamp `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`

	Tags  []string `gorm:"-" json:"tags"`
	Media []Media  `gorm:"-" json:"media"`
}

// Tag is a per-owner label. ID is "{owner}_{lowercase text}", so lookups are
// case-insensitive while Name keeps the casing of the first writer.
type Tag struct {
	ID     string `gorm:"primaryKey" json:"-"`
	UserID string `gorm:"column:user_id" json:"-"`
	Name   string `gorm:"column:tag" json:"tag"`
	Count  int    `gorm:"column:count" json:"count"`
}

type EntryTag struct {
	EntryID string `gorm:"column:entry_id;primaryKey"`
	TagID   string `gorm:"column:tag_id;primaryKey"`
}

type Media struct {
	ID       string    `gorm:"primaryKey" json:"-"`
	EntryID  string    `gorm:"column:entry_id" json:"-"`
	Filename string    `gorm:"column:filename" json:"filename"`
	Filepath string    `gorm:"column:filepath" json:"filepath"`
	FileType MediaType `gorm:"column:file_type" json:"type"`
	FileSize int64     `gorm:"column:file_size" json:"size"`
}

// TagCount is one row of a tag listing.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func (Entry) TableName() string {
	return "entries"
}

func (Tag) TableName() string {
	return "tags"
}

func (EntryTag) TableName() string {
	return "entry_tags"
}

func (Media) TableName() string {
	return "media"
}
