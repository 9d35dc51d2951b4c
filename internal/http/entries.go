package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/media"
)

// mediaField is the multipart field carrying uploaded files.
const mediaField = "media"

type EntryResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	EntryDate string          `json:"entry_date"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Tags      []string        `json:"tags"`
	Media     []MediaResponse `json:"media"`
}

type MediaResponse struct {
	Filename string             `json:"filename"`
	URL      string             `json:"url"`
	Type     entities.MediaType `json:"type"`
	Size     int64              `json:"size"`
}

type EntriesController struct {
	store EntryStore
	links MediaLinker
}

func NewEntriesController(store EntryStore, links MediaLinker) *EntriesController {
	return &EntriesController{store: store, links: links}
}

// ListEntries returns the owner's entries, newest first
// GET /api/entries?tag=&start_date=&end_date=
func (ec *EntriesController) ListEntries(c *gin.Context) {
	filter := entries.ListFilter{
		Tag:       c.Query("tag"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	list, err := ec.store.List(c.Request.Context(), GetOwnerID(c), filter)
	if err != nil {
		respondInternalError(c, err, "list entries")
		return
	}

	response := make([]EntryResponse, 0, len(list))
	for _, entry := range list {
		response = append(response, ec.toResponse(c, entry))
	}
	c.JSON(http.StatusOK, response)
}

// GetEntry returns a single entry
// GET /api/entries/:id
func (ec *EntriesController) GetEntry(c *gin.Context) {
	entry, err := ec.store.Get(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get entry")
		return
	}
	if entry == nil {
		respondNotFound(c, "entry")
		return
	}
	c.JSON(http.StatusOK, ec.toResponse(c, *entry))
}

// CreateEntry stores a new entry from a multipart or url-encoded form
// POST /api/entries
func (ec *EntriesController) CreateEntry(c *gin.Context) {
	uploads, closeAll, err := formUploads(c)
	if err != nil {
		respondBadRequest(c, "invalid form: "+err.Error())
		return
	}
	defer closeAll()

	in := entries.NewEntry{
		Title:     c.PostForm("title"),
		Content:   c.PostForm("content"),
		EntryDate: c.PostForm("entry_date"),
		Tags:      splitTags(c.PostForm("tags")),
		Files:     uploads,
	}

	id, err := ec.store.Create(c.Request.Context(), GetOwnerID(c), in)
	if err != nil {
		respondRepositoryError(c, err, "create entry")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry_id": id})
}

// UpdateEntry applies the submitted fields to an entry. Fields missing from
// the form are left untouched; an empty "tags" field clears the tags.
// PUT /api/entries/:id
func (ec *EntriesController) UpdateEntry(c *gin.Context) {
	uploads, closeAll, err := formUploads(c)
	if err != nil {
		respondBadRequest(c, "invalid form: "+err.Error())
		return
	}
	defer closeAll()

	in := entries.EntryUpdate{
		Title:     optionalField(c, "title"),
		Content:   optionalField(c, "content"),
		EntryDate: optionalField(c, "entry_date"),
		Tags:      entities.KeepTags(),
		Files:     uploads,
	}
	if raw, ok := c.GetPostForm("tags"); ok {
		in.Tags = entities.ReplaceTags(splitTags(raw)...)
	}

	found, err := ec.store.Update(c.Request.Context(), GetOwnerID(c), c.Param("id"), in)
	if err != nil {
		respondRepositoryError(c, err, "update entry")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: found})
}

// DeleteEntry removes an entry with its media
// DELETE /api/entries/:id
func (ec *EntriesController) DeleteEntry(c *gin.Context) {
	found, err := ec.store.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "delete entry")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: found})
}

func (ec *EntriesController) toResponse(c *gin.Context, entry entities.Entry) EntryResponse {
	resp := EntryResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Content:   entry.Content,
		EntryDate: entry.EntryDate,
		CreatedAt: entry.CreatedAt.String(),
		UpdatedAt: entry.UpdatedAt.String(),
		Tags:      entry.Tags,
		Media:     make([]MediaResponse, 0, len(entry.Media)),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	for _, m := range entry.Media {
		url, err := ec.links.Link(c.Request.Context(), m)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"entry_id": entry.ID, "filepath": m.Filepath}).
				Warn("Skipping media without a link")
			continue
		}
		resp.Media = append(resp.Media, MediaResponse{
			Filename: m.Filename,
			URL:      url,
			Type:     m.FileType,
			Size:     m.FileSize,
		})
	}
	return resp
}

// formUploads opens every file of the media field. The returned func closes
// them. Requests that are not multipart carry no files.
func formUploads(c *gin.Context) ([]media.Upload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]media.Upload, 0, len(form.File[mediaField]))
	for _, header := range form.File[mediaField] {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		opened = append(opened, f)
		uploads = append(uploads, media.Upload{Filename: header.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func optionalField(c *gin.Context, name string) *string {
	value, ok := c.GetPostForm(name)
	if !ok {
		return nil
	}
	return &value
}

// splitTags parses a comma separated tag list.
func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
