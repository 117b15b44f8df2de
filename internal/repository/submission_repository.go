package repository

import (
	"context"
	"errors"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whatsurv/internal/docstore"
	"whatsurv/internal/models"
)

type SubmissionRepositoryImpl struct {
	store        *docstore.Store
	readAttempts int
}

func NewSubmissionRepository(store *docstore.Store, readAttempts int) *SubmissionRepositoryImpl {
	return &SubmissionRepositoryImpl{store: store, readAttempts: readAttempts}
}

func (r *SubmissionRepositoryImpl) Create(ctx context.Context, submission *models.Submission) (string, error) {
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	res, err := r.store.C(docstore.Submissions).InsertOne(ctx, submission)
	if err != nil {
		if lungo.IsUniquenessError(err) {
			return "", models.ErrDuplicateSubmission
		}
		return "", transportError("ошибка при сохранении ответов", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		submission.ID = oid.Hex()
	}

	return submission.ID, nil
}

func (r *SubmissionRepositoryImpl) Exists(ctx context.Context, postID, userID string) (bool, error) {
	return retryRead(ctx, r.readAttempts, func() (bool, error) {
		count, err := r.store.C(docstore.Submissions).CountDocuments(ctx, bson.M{"postId": postID, "userId": userID})
		if err != nil {
			return false, transportError("ошибка при проверке ответов", err)
		}
		return count > 0, nil
	})
}

func (r *SubmissionRepositoryImpl) ListByPostID(ctx context.Context, postID string) ([]models.Submission, error) {
	return retryRead(ctx, r.readAttempts, func() ([]models.Submission, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

		cursor, err := r.store.C(docstore.Submissions).Find(ctx, bson.M{"postId": postID}, opts)
		if err != nil {
			return nil, transportError("ошибка при получении ответов", err)
		}

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, transportError("ошибка при чтении ответов", err)
		}

		submissions := make([]models.Submission, 0, len(docs))
		for _, doc := range docs {
			submissions = append(submissions, models.Submission{
				ID:        documentID(doc),
				PostID:    stringField(doc, "postId"),
				UserID:    stringField(doc, "userId"),
				Answers:   stringSlice(doc["answers"]),
				CreatedAt: timeOrNow(doc, "createdAt"),
				Category:  stringField(doc, "category"),
				AgeGroup:  stringField(doc, "ageGroup"),
				Title:     stringField(doc, "title"),
			})
		}

		return submissions, nil
	})
}

func (r *SubmissionRepositoryImpl) DeleteByPostID(ctx context.Context, postID string) (int64, error) {
	result, err := r.store.C(docstore.Submissions).DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, transportError("ошибка при удалении ответов", err)
	}
	return result.DeletedCount, nil
}

func (r *SubmissionRepositoryImpl) HasMarker(ctx context.Context, userID, postID string) (bool, error) {
	return retryRead(ctx, r.readAttempts, func() (bool, error) {
		var doc bson.M
		err := r.store.C(docstore.UserPosts).FindOne(ctx, bson.M{"userId": userID, "postId": postID}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return false, nil
			}
			return false, transportError("ошибка при проверке прохождения опроса", err)
		}
		return true, nil
	})
}

// PutMarker is idempotent: an existing marker for the same user and post is
// left as it is.
func (r *SubmissionRepositoryImpl) PutMarker(ctx context.Context, marker *models.CompletionMarker) error {
	if marker.CreatedAt.IsZero() {
		marker.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	filter := bson.M{"userId": marker.UserID, "postId": marker.PostID}
	update := bson.M{"$setOnInsert": bson.M{
		"userId":    marker.UserID,
		"postId":    marker.PostID,
		"createdAt": marker.CreatedAt,
		"isDone":    true,
	}}

	_, err := r.store.C(docstore.UserPosts).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return transportError("ошибка при сохранении отметки о прохождении", err)
	}

	marker.IsDone = true
	return nil
}

func (r *SubmissionRepositoryImpl) ListMarkers(ctx context.Context, userID string) ([]models.CompletionMarker, error) {
	return retryRead(ctx, r.readAttempts, func() ([]models.CompletionMarker, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := r.store.C(docstore.UserPosts).Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			return nil, transportError("ошибка при получении отметок", err)
		}

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, transportError("ошибка при чтении отметок", err)
		}

		markers := make([]models.CompletionMarker, 0, len(docs))
		for _, doc := range docs {
			markers = append(markers, markerFromDocument(doc))
		}

		return markers, nil
	})
}

func (r *SubmissionRepositoryImpl) DeleteMarkersByPostID(ctx context.Context, postID string) (int64, error) {
	result, err := r.store.C(docstore.UserPosts).DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, transportError("ошибка при удалении отметок", err)
	}
	return result.DeletedCount, nil
}
