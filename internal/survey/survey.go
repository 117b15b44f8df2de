// Package survey holds the answering state of one user for one post.
//
// State values are plain data: every function takes a State and returns a
// new one, so clients can keep it between requests and the service can
// rebuild it from a submitted answer array.
package survey

import (
	"errors"
	"fmt"
	"strings"

	"whatsurv/internal/models"
)

type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusInProgress Status = "InProgress"
	StatusSubmitted  Status = "Submitted"
)

var (
	ErrQuestionOutOfRange = errors.New("вопрос не найден")
	ErrAlreadySubmitted   = errors.New("ответы уже отправлены")
)

type State struct {
	PostID  string   `json:"postId"`
	Answers []string `json:"answers"`
	Status  Status   `json:"status"`
}

// Start returns a fresh state with one blank answer per question.
func Start(post *models.Post) State {
	return State{
		PostID:  post.ID,
		Answers: make([]string, len(post.SurveyData)),
		Status:  StatusNotStarted,
	}
}

// FromAnswers aligns a client-supplied answer array with the questions of
// the post. Extra entries are dropped and missing ones stay blank.
func FromAnswers(post *models.Post, answers []string) State {
	s := Start(post)
	for i := range s.Answers {
		if i < len(answers) {
			s.Answers[i] = strings.TrimSpace(answers[i])
		}
	}
	if Answered(s) > 0 {
		s.Status = StatusInProgress
	}
	return s
}

func validOption(q models.Question, option string) bool {
	offered := false
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			continue
		}
		offered = true
		if o == option {
			return true
		}
	}
	// questions without any non-blank option accept free text
	return !offered
}

// Answer records option for the question at index.
func Answer(s State, questions []models.Question, index int, option string) (State, error) {
	if s.Status == StatusSubmitted {
		return s, ErrAlreadySubmitted
	}
	if index < 0 || index >= len(questions) || index >= len(s.Answers) {
		return s, fmt.Errorf("%w: %d", ErrQuestionOutOfRange, index)
	}
	if !validOption(questions[index], option) {
		return s, fmt.Errorf("%w: %q", models.ErrInvalidAnswer, option)
	}

	next := State{
		PostID:  s.PostID,
		Answers: append([]string(nil), s.Answers...),
		Status:  StatusInProgress,
	}
	next.Answers[index] = option
	return next, nil
}

// Answered counts the non-blank answers.
func Answered(s State) int {
	n := 0
	for _, a := range s.Answers {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

// Progress is the completion percentage, 0 when there are no questions.
func Progress(answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(answered) / float64(total) * 100
}

// Complete reports whether every question has an answer. It is true for a
// post without questions.
func Complete(s State) bool {
	return Answered(s) == len(s.Answers)
}

// Validate checks that every answer is complete and matches an offered
// option.
func Validate(s State, questions []models.Question) error {
	if !Complete(s) {
		return fmt.Errorf("%w: %d из %d", models.ErrIncompleteAnswers, Answered(s), len(s.Answers))
	}
	for i, a := range s.Answers {
		if i < len(questions) && !validOption(questions[i], a) {
			return fmt.Errorf("%w: вопрос %d", models.ErrInvalidAnswer, i+1)
		}
	}
	return nil
}

func MarkSubmitted(s State) State {
	s.Answers = append([]string(nil), s.Answers...)
	s.Status = StatusSubmitted
	return s
}
