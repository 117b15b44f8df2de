package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"whatsurv/internal/models"
)

// reportRepository mirrors submissions into Postgres for answer statistics.
type reportRepository struct {
	db *sqlx.DB
}

type submissionReportRow struct {
	SubmissionID string    `db:"submission_id"`
	PostID       string    `db:"post_id"`
	UserID       string    `db:"user_id"`
	Category     string    `db:"category"`
	AgeGroup     string    `db:"age_group"`
	UserSexType  string    `db:"user_sex_type"`
	CreatedAt    time.Time `db:"created_at"`
}

type submissionAnswerRow struct {
	SubmissionID  string `db:"submission_id"`
	PostID        string `db:"post_id"`
	QuestionIndex int    `db:"question_index"`
	Answer        string `db:"answer"`
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) RecordSubmission(ctx context.Context, submission *models.Submission) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	submissionID := submission.ID
	if submissionID == "" {
		submissionID = uuid.New().String()
	}

	report := submissionReportRow{
		SubmissionID: submissionID,
		PostID:       submission.PostID,
		UserID:       submission.UserID,
		Category:     submission.Category,
		AgeGroup:     submission.AgeGroup,
		UserSexType:  submission.UserSexType,
		CreatedAt:    submission.CreatedAt,
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO submission_reports
		(submission_id, post_id, user_id, category, age_group, user_sex_type, created_at)
		VALUES
		(:submission_id, :post_id, :user_id, :category, :age_group, :user_sex_type, :created_at)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, report)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении отчета: %w", err)
	}

	for i, answer := range submission.Answers {
		row := submissionAnswerRow{
			SubmissionID:  submissionID,
			PostID:        submission.PostID,
			QuestionIndex: i,
			Answer:        answer,
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO submission_answers (submission_id, post_id, question_index, answer)
			VALUES (:submission_id, :post_id, :question_index, :answer)
			ON CONFLICT DO NOTHING
		`, row)
		if err != nil {
			return fmt.Errorf("ошибка при сохранении ответа: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *reportRepository) AnswerDistribution(ctx context.Context, postID string) (*models.AnswerDistribution, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM submission_reports WHERE post_id = $1`, postID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчете ответов: %w", err)
	}

	answers := []models.AnswerCount{}
	err = r.db.SelectContext(ctx, &answers, `
		SELECT question_index, answer, COUNT(*) AS count
		FROM submission_answers
		WHERE post_id = $1
		GROUP BY question_index, answer
		ORDER BY question_index, answer
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики ответов: %w", err)
	}

	return &models.AnswerDistribution{
		PostID:      postID,
		Submissions: total,
		Answers:     answers,
	}, nil
}

func (r *reportRepository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
