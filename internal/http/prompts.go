package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PromptsController struct {
	questions QuestionSource
}

func NewPromptsController(questions QuestionSource) *PromptsController {
	return &PromptsController{questions: questions}
}

// GenerateQuestion returns a journal writing prompt. It always succeeds.
// POST /api/generate-question
func (pc *PromptsController) GenerateQuestion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"question": pc.questions.Question(c.Request.Context())})
}
