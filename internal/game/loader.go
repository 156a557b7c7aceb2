package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/trivialuned/trivial-bot/internal/domain"
	"github.com/trivialuned/trivial-bot/internal/store"
)

// QuestionLoader fetches the ordered set of active questions for a level.
type QuestionLoader struct {
	repo store.Repository
}

// NewQuestionLoader creates a loader backed by the given repository.
func NewQuestionLoader(repo store.Repository) *QuestionLoader {
	return &QuestionLoader{repo: repo}
}

// Load returns the active questions for a level, ordered by id ascending
// so repeated loads for the same level are reproducible. An empty level
// yields an empty slice, not an error; the caller decides how to react.
func (l *QuestionLoader) Load(ctx context.Context, level int) ([]domain.Question, error) {
	questions, err := l.repo.LoadActiveQuestions(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("load level %d questions: %w", level, err)
	}

	// The backend already orders by id; sorting here keeps the session
	// reproducibility invariant independent of the storage engine.
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].ID < questions[j].ID
	})

	return questions, nil
}
