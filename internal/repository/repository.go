package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"whatsurv/internal/config"
	"whatsurv/internal/docstore"
	"whatsurv/internal/models"
)

// Counter fields that can be incremented on posts and lite posts.
const (
	FieldViews = "views"
	FieldLikes = "likes"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	ListLite(ctx context.Context) ([]models.LitePost, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetLiteByID(ctx context.Context, postID string) (*models.LitePost, error)
	Create(ctx context.Context, post *models.Post) (string, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID string) error
	IncrementCounter(ctx context.Context, collection, postID, field string) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) (string, error)
	Exists(ctx context.Context, postID, userID string) (bool, error)
	ListByPostID(ctx context.Context, postID string) ([]models.Submission, error)
	DeleteByPostID(ctx context.Context, postID string) (int64, error)
	HasMarker(ctx context.Context, userID, postID string) (bool, error)
	PutMarker(ctx context.Context, marker *models.CompletionMarker) error
	ListMarkers(ctx context.Context, userID string) ([]models.CompletionMarker, error)
	DeleteMarkersByPostID(ctx context.Context, postID string) (int64, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByImageID(ctx context.Context, imageID string) (*models.Image, error)
	Delete(ctx context.Context, imageID string) error
}

type ReportRepository interface {
	RecordSubmission(ctx context.Context, submission *models.Submission) error
	AnswerDistribution(ctx context.Context, postID string) (*models.AnswerDistribution, error)
	HealthCheck(ctx context.Context) error
}

type Repository struct {
	User       UserRepository
	Post       PostRepository
	Submission SubmissionRepository
	Image      ImageRepository
	Report     ReportRepository
}

// NewRepository builds the repositories over the shared store. reportDB may
// be nil when the reporting sink is disabled.
func NewRepository(store *docstore.Store, reportDB *sqlx.DB, cfg *config.Config) *Repository {
	repo := &Repository{
		User:       NewUserRepository(store, cfg.ReadRetryAttempts),
		Post:       NewPostRepository(store, cfg.CounterMode, cfg.ReadRetryAttempts),
		Submission: NewSubmissionRepository(store, cfg.ReadRetryAttempts),
		Image:      NewImageRepository(store),
	}

	if reportDB != nil {
		repo.Report = NewReportRepository(reportDB)
	}

	return repo
}
