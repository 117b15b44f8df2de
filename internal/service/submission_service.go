package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"whatsurv/internal/identity"
	"whatsurv/internal/models"
	"whatsurv/internal/repository"
	"whatsurv/internal/survey"
)

type SubmissionService interface {
	HasSubmitted(ctx context.Context, postID string) (bool, error)
	Submit(ctx context.Context, postID string, answers []string) (*models.Submission, error)
	Progress(ctx context.Context, postID string, answers []string) (*ProgressResult, error)
	ListCompletions(ctx context.Context) ([]models.CompletionMarker, error)
}

type ProgressResult struct {
	Answered int           `json:"answered"`
	Total    int           `json:"total"`
	Progress float64       `json:"progress"`
	Status   survey.Status `json:"status"`
	Complete bool          `json:"complete"`
}

type submissionService struct {
	postRepo       repository.PostRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	reportRepo     repository.ReportRepository
}

// NewSubmissionService builds the workflow. reportRepo may be nil.
func NewSubmissionService(postRepo repository.PostRepository, submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository, reportRepo repository.ReportRepository) SubmissionService {
	return &submissionService{
		postRepo:       postRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		reportRepo:     reportRepo,
	}
}

// HasSubmitted reports whether the caller already answered the post.
// Anonymous callers get false. A submission without its marker means an
// earlier Submit stopped halfway, so the marker is written again.
func (s *submissionService) HasSubmitted(ctx context.Context, postID string) (bool, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return false, nil
	}

	done, err := s.submissionRepo.HasMarker(ctx, id.UID, postID)
	if err != nil || done {
		return done, err
	}

	exists, err := s.submissionRepo.Exists(ctx, postID, id.UID)
	if err != nil || !exists {
		return false, err
	}

	err = s.submissionRepo.PutMarker(ctx, &models.CompletionMarker{
		UserID: id.UID,
		PostID: postID,
		IsDone: true,
	})
	if err != nil {
		slog.Warn("failed to restore completion marker", "post_id", postID, "user_id", id.UID, "error", err)
	} else {
		slog.Info("completion marker restored", "post_id", postID, "user_id", id.UID)
	}

	return true, nil
}

func (s *submissionService) Submit(ctx context.Context, postID string, answers []string) (*models.Submission, error) {
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

	state := survey.FromAnswers(post, answers)
	if err := survey.Validate(state, post.SurveyData); err != nil {
		return nil, err
	}

	submitted, err := s.HasSubmitted(ctx, postID)
	if err != nil {
		return nil, err
	}
	if submitted {
		return nil, models.ErrDuplicateSubmission
	}

	submission := &models.Submission{
		PostID:           postID,
		UserID:           id.UID,
		Answers:          state.Answers,
		CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
		Email:            post.Email,
		Nickname:         post.Nickname,
		Category:         post.Category,
		AgeGroup:         post.AgeGroup,
		Title:            post.Title,
		Content:          post.Content,
		ResearchLocation: post.ResearchLocation,
		ResearchTime:     post.ResearchTime,
		ResearchType:     post.ResearchType,
		UserEmail:        id.Email,
		UserNickname:     id.DisplayName,
	}
	if post.DeadlineDate != nil {
		submission.Deadline = post.DeadlineDate.UTC().Format(time.RFC3339)
	}

	// the profile is optional, identity fields are the fallback
	profile, err := s.userRepo.GetUserByID(ctx, id.UID)
	switch {
	case err == nil:
		if profile.Email != "" {
			submission.UserEmail = profile.Email
		}
		if profile.Nickname != "" {
			submission.UserNickname = profile.Nickname
		}
		submission.UserSexType = profile.SexType
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	if _, err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	err = s.submissionRepo.PutMarker(ctx, &models.CompletionMarker{
		UserID:    id.UID,
		PostID:    postID,
		CreatedAt: submission.CreatedAt,
		IsDone:    true,
	})
	if err != nil {
		// HasSubmitted repairs the marker on the next check
		slog.Error("completion marker write failed", "post_id", postID, "user_id", id.UID, "error", err)
		return nil, err
	}

	if s.reportRepo != nil {
		if err := s.reportRepo.RecordSubmission(ctx, submission); err != nil {
			slog.Warn("failed to mirror submission to reporting db", "post_id", postID, "error", err)
		}
	}

	slog.Info("survey submitted", "post_id", postID, "user_id", id.UID)
	return submission, nil
}

func (s *submissionService) Progress(ctx context.Context, postID string, answers []string) (*ProgressResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}

	state := survey.FromAnswers(post, answers)
	answered := survey.Answered(state)
	total := len(post.SurveyData)

	return &ProgressResult{
		Answered: answered,
		Total:    total,
		Progress: survey.Progress(answered, total),
		Status:   state.Status,
		Complete: survey.Complete(state),
	}, nil
}

func (s *submissionService) ListCompletions(ctx context.Context) ([]models.CompletionMarker, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	return s.submissionRepo.ListMarkers(ctx, id.UID)
}
