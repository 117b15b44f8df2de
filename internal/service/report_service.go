package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"whatsurv/internal/identity"
	"whatsurv/internal/models"
	"whatsurv/internal/repository"
)

type ReportService interface {
	AnswerDistribution(ctx context.Context, postID string) (*models.AnswerDistribution, error)
}

type reportService struct {
	postRepo       repository.PostRepository
	submissionRepo repository.SubmissionRepository
	reportRepo     repository.ReportRepository
}

// NewReportService serves statistics from the reporting database when
// reportRepo is set and from the stored submissions otherwise.
func NewReportService(postRepo repository.PostRepository, submissionRepo repository.SubmissionRepository,
	reportRepo repository.ReportRepository) ReportService {
	return &reportService{
		postRepo:       postRepo,
		submissionRepo: submissionRepo,
		reportRepo:     reportRepo,
	}
}

func (s *reportService) AnswerDistribution(ctx context.Context, postID string) (*models.AnswerDistribution, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}
	if post.UserID != id.UID {
		return nil, models.ErrForbidden
	}

	if s.reportRepo != nil {
		dist, err := s.reportRepo.AnswerDistribution(ctx, postID)
		if err == nil {
			return dist, nil
		}
		slog.Warn("reporting db unavailable, counting stored submissions", "post_id", postID, "error", err)
	}

	submissions, err := s.submissionRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return distributionFromSubmissions(postID, submissions), nil
}

func distributionFromSubmissions(postID string, submissions []models.Submission) *models.AnswerDistribution {
	type key struct {
		index  int
		answer string
	}

	counts := make(map[key]int)
	for _, sub := range submissions {
		for i, answer := range sub.Answers {
			counts[key{i, answer}]++
		}
	}

	answers := make([]models.AnswerCount, 0, len(counts))
	for k, n := range counts {
		answers = append(answers, models.AnswerCount{QuestionIndex: k.index, Answer: k.answer, Count: n})
	}
	sort.Slice(answers, func(i, j int) bool {
		if answers[i].QuestionIndex != answers[j].QuestionIndex {
			return answers[i].QuestionIndex < answers[j].QuestionIndex
		}
		return answers[i].Answer < answers[j].Answer
	})

	return &models.AnswerDistribution{
		PostID:      postID,
		Submissions: len(submissions),
		Answers:     answers,
	}
}
