package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"whatsurv/internal/docstore"
	"whatsurv/internal/models"
)

type ImageRepositoryImpl struct {
	store *docstore.Store
}

type imageDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	models.Image `bson:",inline"`
}

func NewImageRepository(store *docstore.Store) *ImageRepositoryImpl {
	return &ImageRepositoryImpl{store: store}
}

func (r *ImageRepositoryImpl) Create(ctx context.Context, image *models.Image) error {
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	doc := imageDocument{ID: primitive.NewObjectID(), Image: *image}

	_, err := r.store.C(docstore.Images).InsertOne(ctx, doc)
	if err != nil {
		return transportError("ошибка при создании изображения", err)
	}

	image.ImageID = doc.ID.Hex()
	return nil
}

func (r *ImageRepositoryImpl) GetByImageID(ctx context.Context, imageID string) (*models.Image, error) {
	var doc imageDocument
	err := r.store.C(docstore.Images).FindOne(ctx, idFilter(imageID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("изображение %s: %w", imageID, models.ErrNotFound)
		}
		return nil, transportError("ошибка получения изображения", err)
	}

	image := doc.Image
	image.ImageID = doc.ID.Hex()
	return &image, nil
}

func (r *ImageRepositoryImpl) Delete(ctx context.Context, imageID string) error {
	result, err := r.store.C(docstore.Images).DeleteOne(ctx, idFilter(imageID))
	if err != nil {
		return transportError("ошибка при удалении изображения", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("изображение %s: %w", imageID, models.ErrNotFound)
	}

	return nil
}
