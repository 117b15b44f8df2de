package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dario.cat/mergo"

	"whatsurv/internal/docstore"
	"whatsurv/internal/identity"
	"whatsurv/internal/models"
	"whatsurv/internal/repository"
	"whatsurv/internal/storage"
)

var ErrStorageDisabled = errors.New("хранилище изображений не настроено")

type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListLitePosts(ctx context.Context) ([]models.LitePost, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetLitePost(ctx context.Context, postID string) (*models.LitePost, error)
	CreatePost(ctx context.Context, req repository.CreatePostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, req repository.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	IncrementViews(ctx context.Context, postID string) (int64, error)
	IncrementLikes(ctx context.Context, postID string) (int64, error)
	IncrementLiteViews(ctx context.Context, postID string) (int64, error)
	IncrementLiteLikes(ctx context.Context, postID string) (int64, error)
	AddImage(ctx context.Context, fileName string, file io.Reader, size int64) (*models.Image, error)
	DeleteImage(ctx context.Context, imageID string) error
}

type postService struct {
	postRepo       repository.PostRepository
	submissionRepo repository.SubmissionRepository
	imageRepo      repository.ImageRepository
	storage        storage.Storage
}

func NewPostService(postRepo repository.PostRepository, submissionRepo repository.SubmissionRepository,
	imageRepo repository.ImageRepository, storage storage.Storage) PostService {
	return &postService{
		postRepo:       postRepo,
		submissionRepo: submissionRepo,
		imageRepo:      imageRepo,
		storage:        storage,
	}
}

// editablePost holds the fields an owner may change.
type editablePost struct {
	Title            string
	Content          string
	Category         string
	SexType          string
	AgeGroup         string
	ResearchType     string
	ResearchLocation string
	ResearchTime     string
	ImageURL         string
	SurveyData       []models.Question
}

func (p *postService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return p.postRepo.List(ctx)
}

func (p *postService) ListLitePosts(ctx context.Context) ([]models.LitePost, error) {
	return p.postRepo.ListLite(ctx)
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID)
}

func (p *postService) GetLitePost(ctx context.Context, postID string) (*models.LitePost, error) {
	return p.postRepo.GetLiteByID(ctx, postID)
}

func (p *postService) CreatePost(ctx context.Context, req repository.CreatePostRequest) (*models.Post, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	post := &models.Post{
		Title:            req.Title,
		Content:          req.Content,
		Category:         req.Category,
		SexType:          req.SexType,
		AgeGroup:         req.AgeGroup,
		ResearchType:     req.ResearchType,
		ResearchLocation: req.ResearchLocation,
		ResearchTime:     req.ResearchTime,
		ImageURL:         req.ImageURL,
		SurveyData:       req.SurveyData,
		DeadlineDate:     req.DeadlineDate,
		Rewards:          req.Rewards,
		Counts:           req.Counts,
		// owner always comes from the verified identity
		UserID:   id.UID,
		Email:    id.Email,
		Nickname: id.DisplayName,
	}
	if post.SurveyData == nil {
		post.SurveyData = []models.Question{}
	}

	if _, err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", post.ID, "user_id", id.UID)
	return post, nil
}

// ownedPost loads the post and checks that the caller owns it.
func (p *postService) ownedPost(ctx context.Context, postID string) (*models.Post, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}

	if post.UserID != id.UID {
		return nil, models.ErrForbidden
	}

	return post, nil
}

func (p *postService) UpdatePost(ctx context.Context, req repository.UpdatePostRequest) (*models.Post, error) {
	post, err := p.ownedPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	current := editablePost{
		Title:            post.Title,
		Content:          post.Content,
		Category:         post.Category,
		SexType:          post.SexType,
		AgeGroup:         post.AgeGroup,
		ResearchType:     post.ResearchType,
		ResearchLocation: post.ResearchLocation,
		ResearchTime:     post.ResearchTime,
		ImageURL:         post.ImageURL,
		SurveyData:       post.SurveyData,
	}
	patch := editablePost{
		Title:            req.Title,
		Content:          req.Content,
		Category:         req.Category,
		SexType:          req.SexType,
		AgeGroup:         req.AgeGroup,
		ResearchType:     req.ResearchType,
		ResearchLocation: req.ResearchLocation,
		ResearchTime:     req.ResearchTime,
		ImageURL:         req.ImageURL,
		SurveyData:       req.SurveyData,
	}

	// fields left empty in the request keep their stored value
	if err := mergo.Merge(&current, patch, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("ошибка объединения полей поста: %w", err)
	}

	post.Title = current.Title
	post.Content = current.Content
	post.Category = current.Category
	post.SexType = current.SexType
	post.AgeGroup = current.AgeGroup
	post.ResearchType = current.ResearchType
	post.ResearchLocation = current.ResearchLocation
	post.ResearchTime = current.ResearchTime
	post.ImageURL = current.ImageURL
	post.SurveyData = current.SurveyData
	if req.DeadlineDate != nil {
		post.DeadlineDate = req.DeadlineDate
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost removes the post and then, best effort, every completion
// marker and submission that references it. Cascade failures are logged
// and do not fail the call.
func (p *postService) DeletePost(ctx context.Context, postID string) error {
	if _, err := p.ownedPost(ctx, postID); err != nil {
		return err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	markers, err := p.submissionRepo.DeleteMarkersByPostID(ctx, postID)
	if err != nil {
		slog.Warn("partial cascade failure: completion markers", "post_id", postID, "error", err)
	}

	submissions, err := p.submissionRepo.DeleteByPostID(ctx, postID)
	if err != nil {
		slog.Warn("partial cascade failure: submissions", "post_id", postID, "error", err)
	}

	slog.Info("post deleted", "post_id", postID, "markers", markers, "submissions", submissions)
	return nil
}

func (p *postService) increment(ctx context.Context, collection, postID, field string) (int64, error) {
	value, err := p.postRepo.IncrementCounter(ctx, collection, postID, field)
	if err != nil {
		return 0, err
	}
	slog.Debug("counter incremented", "collection", collection, "post_id", postID, "field", field, "value", value)
	return value, nil
}

func (p *postService) IncrementViews(ctx context.Context, postID string) (int64, error) {
	return p.increment(ctx, docstore.Posts, postID, repository.FieldViews)
}

func (p *postService) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	return p.increment(ctx, docstore.Posts, postID, repository.FieldLikes)
}

func (p *postService) IncrementLiteViews(ctx context.Context, postID string) (int64, error) {
	return p.increment(ctx, docstore.LitePosts, postID, repository.FieldViews)
}

func (p *postService) IncrementLiteLikes(ctx context.Context, postID string) (int64, error) {
	return p.increment(ctx, docstore.LitePosts, postID, repository.FieldLikes)
}

func (p *postService) AddImage(ctx context.Context, fileName string, file io.Reader, size int64) (*models.Image, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	if p.storage == nil {
		return nil, ErrStorageDisabled
	}

	objectName, imageURL, err := p.storage.UploadImage(ctx, id.UID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки изображения в MinIO: %w", err)
	}

	image := &models.Image{
		UserID:      id.UID,
		ObjectName:  objectName,
		ImageURL:    imageURL,
		FileName:    fileName,
		ContentType: storage.ContentType(fileName),
		Size:        size,
	}

	err = p.imageRepo.Create(ctx, image)
	if err != nil {
		if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
			slog.Warn("failed to remove orphaned object", "object", objectName, "error", delErr)
		}
		return nil, fmt.Errorf("ошибка сохранения изображения в БД: %w", err)
	}

	return image, nil
}

func (p *postService) DeleteImage(ctx context.Context, imageID string) error {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return models.ErrUnauthenticated
	}

	image, err := p.imageRepo.GetByImageID(ctx, imageID)
	if err != nil {
		return err
	}

	if image.UserID != id.UID {
		return models.ErrForbidden
	}

	if p.storage != nil {
		if err := p.storage.DeleteImage(ctx, image.ObjectName); err != nil {
			slog.Warn("failed to delete object from MinIO", "object", image.ObjectName, "error", err)
		}
	}

	if err := p.imageRepo.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("ошибка удаления из БД: %w", err)
	}

	return nil
}
