// Package prompts produces journal writing prompts. Questions come from a
// text generation API; a fixed question is used whenever that is not
// possible.
package prompts

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// FallbackQuestion is returned when no generated question is available.
const FallbackQuestion = "What is a meaningful memory from your past that has shaped who you are today?"

// Client defines the interface for question generation providers.
type Client interface {
	Generate(ctx context.Context) (string, error)
	Name() string
}

// Service hands out questions and never fails.
type Service struct {
	client Client
}

// NewService wraps client. A nil client always yields FallbackQuestion.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Question returns a generated question, or FallbackQuestion on any error.
func (s *Service) Question(ctx context.Context) string {
	if s.client == nil {
		return FallbackQuestion
	}

	question, err := s.client.Generate(ctx)
	if err != nil {
		log.WithError(err).WithField("provider", s.client.Name()).Warn("Failed to generate question, using fallback")
		return FallbackQuestion
	}
	return question
}
