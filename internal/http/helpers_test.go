package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/journal/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOwnerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(OwnerMiddleware("alice"))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetOwnerID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "alice", w.Body.String())
}

func TestRespondRepositoryError_Validation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondRepositoryError(c, entities.NewValidationError("title", "must not be empty"), "create entry")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"title: must not be empty"}`, w.Body.String())
}

func TestRespondRepositoryError_HidesStorageDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondRepositoryError(c, entities.NewStorageError("create entry", errors.New("disk I/O error at /var/db")), "create entry")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "/var/db")
}
