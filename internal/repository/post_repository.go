package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whatsurv/internal/config"
	"whatsurv/internal/docstore"
	"whatsurv/internal/models"
)

type PostRepositoryImpl struct {
	store        *docstore.Store
	counterMode  string
	readAttempts int

	// afterRead runs between the read and the write of a read-modify-write
	// increment. Tests use it to interleave concurrent increments.
	afterRead func()
}

type CreatePostRequest struct {
	Title            string            `json:"title" validate:"required,max=70"`
	Content          string            `json:"content"`
	Category         string            `json:"category" validate:"required"`
	SexType          string            `json:"sexType" validate:"required"`
	AgeGroup         string            `json:"ageGroup" validate:"required"`
	ResearchType     string            `json:"researchType" validate:"required"`
	ResearchLocation string            `json:"researchLocation" validate:"required"`
	ResearchTime     string            `json:"researchTime" validate:"required"`
	ImageURL         string            `json:"imageUrl"`
	DeadlineDate     *time.Time        `json:"deadlineDate"`
	SurveyData       []models.Question `json:"surveyData" validate:"dive"`
	Rewards          int64             `json:"rewards" validate:"gte=0"`
	Counts           int64             `json:"counts" validate:"gte=0"`

	// Owner fields are accepted for compatibility with the web client but
	// always replaced by the authenticated identity.
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type UpdatePostRequest struct {
	PostID           string            `json:"-"`
	Title            string            `json:"title" validate:"omitempty,max=70"`
	Content          string            `json:"content"`
	Category         string            `json:"category"`
	SexType          string            `json:"sexType"`
	AgeGroup         string            `json:"ageGroup"`
	ResearchType     string            `json:"researchType"`
	ResearchLocation string            `json:"researchLocation"`
	ResearchTime     string            `json:"researchTime"`
	ImageURL         string            `json:"imageUrl"`
	DeadlineDate     *time.Time        `json:"deadlineDate"`
	SurveyData       []models.Question `json:"surveyData" validate:"dive"`
}

func NewPostRepository(store *docstore.Store, counterMode string, readAttempts int) *PostRepositoryImpl {
	return &PostRepositoryImpl{
		store:        store,
		counterMode:  counterMode,
		readAttempts: readAttempts,
	}
}

func postDocument(post *models.Post) bson.M {
	questions := post.SurveyData
	if questions == nil {
		questions = []models.Question{}
	}

	return bson.M{
		"title":            post.Title,
		"content":          post.Content,
		"category":         post.Category,
		"sexType":          post.SexType,
		"ageGroup":         post.AgeGroup,
		"researchType":     post.ResearchType,
		"researchLocation": post.ResearchLocation,
		"researchTime":     post.ResearchTime,
		"imageUrl":         post.ImageURL,
		"surveyData":       questions,
		"deadlineDate":     post.DeadlineDate,
	}
}

func (r *PostRepositoryImpl) List(ctx context.Context) ([]models.Post, error) {
	return retryRead(ctx, r.readAttempts, func() ([]models.Post, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := r.store.C(docstore.Posts).Find(ctx, bson.M{}, opts)
		if err != nil {
			return nil, transportError("ошибка при получении постов", err)
		}

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, transportError("ошибка при чтении постов", err)
		}

		posts := make([]models.Post, 0, len(docs))
		for _, doc := range docs {
			posts = append(posts, postFromDocument(doc))
		}

		return posts, nil
	})
}

func (r *PostRepositoryImpl) ListLite(ctx context.Context) ([]models.LitePost, error) {
	return retryRead(ctx, r.readAttempts, func() ([]models.LitePost, error) {
		cursor, err := r.store.C(docstore.LitePosts).Find(ctx, bson.M{})
		if err != nil {
			return nil, transportError("ошибка при получении постов", err)
		}

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, transportError("ошибка при чтении постов", err)
		}

		posts := make([]models.LitePost, 0, len(docs))
		for _, doc := range docs {
			posts = append(posts, litePostFromDocument(doc))
		}

		return posts, nil
	})
}

// findDocument returns nil without error when the document does not exist.
func (r *PostRepositoryImpl) findDocument(ctx context.Context, collection, postID string) (bson.M, error) {
	return retryRead(ctx, r.readAttempts, func() (bson.M, error) {
		var doc bson.M
		err := r.store.C(collection).FindOne(ctx, idFilter(postID)).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, nil
			}
			return nil, transportError("ошибка при получении поста", err)
		}
		return doc, nil
	})
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	doc, err := r.findDocument(ctx, docstore.Posts, postID)
	if err != nil || doc == nil {
		return nil, err
	}

	post := postFromDocument(doc)
	return &post, nil
}

func (r *PostRepositoryImpl) GetLiteByID(ctx context.Context, postID string) (*models.LitePost, error) {
	doc, err := r.findDocument(ctx, docstore.LitePosts, postID)
	if err != nil || doc == nil {
		return nil, err
	}

	post := litePostFromDocument(doc)
	return &post, nil
}

// Create stores the post as given. Owner fields must already be stamped by
// the caller.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) (string, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Views = 0
	post.Likes = 0

	doc := postDocument(post)
	doc["_id"] = primitive.NewObjectID()
	doc["createdAt"] = post.CreatedAt
	doc["updatedAt"] = post.UpdatedAt
	doc["views"] = post.Views
	doc["likes"] = post.Likes
	doc["rewards"] = post.Rewards
	doc["counts"] = post.Counts
	doc["userId"] = post.UserID
	doc["email"] = post.Email
	doc["nickname"] = post.Nickname

	_, err := r.store.C(docstore.Posts).InsertOne(ctx, doc)
	if err != nil {
		return "", transportError("ошибка при создании поста", err)
	}

	post.ID = doc["_id"].(primitive.ObjectID).Hex()
	return post.ID, nil
}

// Update overwrites the editable fields only. Identity, creation time,
// counters and owner fields are left untouched.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	set := postDocument(post)
	set["updatedAt"] = post.UpdatedAt

	result, err := r.store.C(docstore.Posts).UpdateOne(ctx, idFilter(post.ID), bson.M{"$set": set})
	if err != nil {
		return transportError("ошибка при обновлении поста", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("пост с ID %s: %w", post.ID, models.ErrNotFound)
	}

	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	result, err := r.store.C(docstore.Posts).DeleteOne(ctx, idFilter(postID))
	if err != nil {
		return transportError("ошибка при удалении поста", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}

	return nil
}

// IncrementCounter adds one to the views or likes counter of a post in the
// given collection and returns the new value.
func (r *PostRepositoryImpl) IncrementCounter(ctx context.Context, collection, postID, field string) (int64, error) {
	if field != FieldViews && field != FieldLikes {
		return 0, fmt.Errorf("неизвестный счетчик %q", field)
	}
	if collection != docstore.Posts && collection != docstore.LitePosts {
		return 0, fmt.Errorf("неизвестная коллекция %q", collection)
	}

	if r.counterMode == config.CounterModeReadModifyWrite {
		return r.incrementReadModifyWrite(ctx, collection, postID, field)
	}
	return r.incrementAtomic(ctx, collection, postID, field)
}

func (r *PostRepositoryImpl) incrementAtomic(ctx context.Context, collection, postID, field string) (int64, error) {
	value, err := r.inc(ctx, collection, postID, field)
	if err == nil || errors.Is(err, models.ErrNotFound) {
		return value, err
	}

	// documents written by older clients may hold a non-numeric counter
	// such as likes: false, which $inc refuses
	if resetErr := r.resetNonNumeric(ctx, collection, postID, field); resetErr != nil {
		return 0, err
	}

	return r.inc(ctx, collection, postID, field)
}

func (r *PostRepositoryImpl) inc(ctx context.Context, collection, postID, field string) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err := r.store.C(collection).
		FindOneAndUpdate(ctx, idFilter(postID), bson.M{"$inc": bson.M{field: int64(1)}}, opts).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
		}
		return 0, transportError("ошибка при обновлении счетчика", err)
	}

	return intField(doc, field), nil
}

// resetNonNumeric sets the counter to 0 if it still holds the non-numeric
// value it had when read.
func (r *PostRepositoryImpl) resetNonNumeric(ctx context.Context, collection, postID, field string) error {
	doc, err := r.findDocument(ctx, collection, postID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}

	current, ok := doc[field]
	if !ok {
		return fmt.Errorf("счетчик %q отсутствует", field)
	}
	switch current.(type) {
	case int32, int64, int, float64:
		return fmt.Errorf("счетчик %q уже числовой", field)
	}

	filter := idFilter(postID)
	filter[field] = current

	_, err = r.store.C(collection).UpdateOne(ctx, filter, bson.M{"$set": bson.M{field: int64(0)}})
	if err != nil {
		return transportError("ошибка при сбросе счетчика", err)
	}
	return nil
}

// incrementReadModifyWrite reads the counter and writes value+1. Concurrent
// callers that read the same value lose increments.
func (r *PostRepositoryImpl) incrementReadModifyWrite(ctx context.Context, collection, postID, field string) (int64, error) {
	doc, err := r.findDocument(ctx, collection, postID)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, fmt.Errorf("пост с ID %s: %w", postID, models.ErrNotFound)
	}

	next := intField(doc, field) + 1

	if r.afterRead != nil {
		r.afterRead()
	}

	_, err = r.store.C(collection).UpdateOne(ctx, idFilter(postID), bson.M{"$set": bson.M{field: next}})
	if err != nil {
		return 0, transportError("ошибка при обновлении счетчика", err)
	}

	return next, nil
}
