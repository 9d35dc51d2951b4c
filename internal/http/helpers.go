package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/entities"
)

// ContextKeyOwnerID is the Gin context key holding the owner of the request.
const ContextKeyOwnerID = "owner_id"

// OwnerMiddleware attaches the single fixed owner to every request.
func OwnerMiddleware(ownerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyOwnerID, ownerID)
		c.Next()
	}
}

// GetOwnerID returns the owner set by OwnerMiddleware.
func GetOwnerID(c *gin.Context) string {
	return c.GetString(ContextKeyOwnerID)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse reports whether an update or delete found its entry.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.WithError(unwrapAll(err)).WithField("context", context).Error("Internal error")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondRepositoryError maps validation errors to 400 and everything else
// to 500.
func respondRepositoryError(c *gin.Context, err error, context string) {
	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		respondBadRequest(c, validationErr.Error())
		return
	}
	respondInternalError(c, err, context)
}

// unwrapAll keeps the storage operation in the log line alongside its cause.
func unwrapAll(err error) error {
	var storageErr *entities.StorageError
	if errors.As(err, &storageErr) && storageErr.Err != nil {
		return errors.Join(err, storageErr.Err)
	}
	return err
}
