package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TagsController struct {
	store TagStore
}

func NewTagsController(store TagStore) *TagsController {
	return &TagsController{store: store}
}

// GetAllTags returns the owner's tags ordered by usage count
// GET /api/tags
func (tc *TagsController) GetAllTags(c *gin.Context) {
	tags, err := tc.store.AllTags(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		respondInternalError(c, err, "get all tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTagUsage returns how many entries currently carry each tag
// GET /api/tags/usage
func (tc *TagsController) GetTagUsage(c *gin.Context) {
	usage, err := tc.store.LiveUsage(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		respondInternalError(c, err, "get tag usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}
