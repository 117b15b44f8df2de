package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"whatsurv/internal/models"
)

// Stored documents come from several clients and may miss fields or carry
// them with a different type. The readers below map anything unusable to the
// zero value of the field.

func asMap(value interface{}) (bson.M, bool) {
	switch v := value.(type) {
	case bson.M:
		return v, true
	case map[string]interface{}:
		return v, true
	case bson.D:
		m := make(bson.M, len(v))
		for _, e := range v {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}

func asSlice(value interface{}) []interface{} {
	switch v := value.(type) {
	case bson.A:
		return v
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return nil
}

func stringField(doc bson.M, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

func intField(doc bson.M, key string) int64 {
	switch v := doc[key].(type) {
	case int32:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func boolField(doc bson.M, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

func timeField(doc bson.M, key string) (time.Time, bool) {
	switch v := doc[key].(type) {
	case primitive.DateTime:
		return v.Time(), true
	case time.Time:
		return v, true
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0), true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timeOrNow(doc bson.M, key string) time.Time {
	if t, ok := timeField(doc, key); ok {
		return t
	}
	return time.Now()
}

func timeOrNil(doc bson.M, key string) *time.Time {
	if t, ok := timeField(doc, key); ok {
		return &t
	}
	return nil
}

func stringSlice(value interface{}) []string {
	items := asSlice(value)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}

func documentID(doc bson.M) string {
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	}
	return ""
}

// idFilter matches store-assigned ObjectIDs as well as imported string ids.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func questionsFromDocument(value interface{}) []models.Question {
	items := asSlice(value)
	questions := make([]models.Question, 0, len(items))
	for _, item := range items {
		doc, ok := asMap(item)
		if !ok {
			continue
		}
		questions = append(questions, models.Question{
			Question:       stringField(doc, "question"),
			Options:        stringSlice(doc["options"]),
			SelectedOption: stringField(doc, "selectedOption"),
		})
	}
	return questions
}

func postFromDocument(doc bson.M) models.Post {
	return models.Post{
		ID:               documentID(doc),
		Title:            stringField(doc, "title"),
		Content:          stringField(doc, "content"),
		Category:         stringField(doc, "category"),
		SexType:          stringField(doc, "sexType"),
		AgeGroup:         stringField(doc, "ageGroup"),
		ResearchType:     stringField(doc, "researchType"),
		ResearchLocation: stringField(doc, "researchLocation"),
		ResearchTime:     stringField(doc, "researchTime"),
		ImageURL:         stringField(doc, "imageUrl"),
		SurveyData:       questionsFromDocument(doc["surveyData"]),
		DeadlineDate:     timeOrNil(doc, "deadlineDate"),
		CreatedAt:        timeOrNow(doc, "createdAt"),
		UpdatedAt:        timeOrNow(doc, "updatedAt"),
		Views:            intField(doc, "views"),
		Likes:            intField(doc, "likes"),
		Rewards:          intField(doc, "rewards"),
		Counts:           intField(doc, "counts"),
		UserID:           stringField(doc, "userId"),
		Email:            stringField(doc, "email"),
		Nickname:         stringField(doc, "nickname"),
	}
}

func litePostFromDocument(doc bson.M) models.LitePost {
	return models.LitePost{
		ID:           documentID(doc),
		Title:        stringField(doc, "title"),
		Contents:     stringField(doc, "contents"),
		Images:       stringField(doc, "images"),
		Views:        intField(doc, "views"),
		Likes:        intField(doc, "likes"),
		Counts:       intField(doc, "counts"),
		CreatedAt:    timeOrNow(doc, "createdAt"),
		DeadlineDate: timeOrNil(doc, "deadlineDate"),
	}
}

func markerFromDocument(doc bson.M) models.CompletionMarker {
	return models.CompletionMarker{
		UserID:    stringField(doc, "userId"),
		PostID:    stringField(doc, "postId"),
		CreatedAt: timeOrNow(doc, "createdAt"),
		IsDone:    boolField(doc, "isDone"),
	}
}

func transportError(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrTransport, action, err)
}

// retryRead runs an idempotent read with bounded exponential backoff.
func retryRead[T any](ctx context.Context, attempts int, op func() (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	// only transport failures are worth another attempt
	retryable := func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, models.ErrTransport) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry[T](ctx, retryable,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
	)
}
