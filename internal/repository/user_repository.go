package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"whatsurv/internal/docstore"
	"whatsurv/internal/models"
)

type userRepository struct {
	store        *docstore.Store
	readAttempts int
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"nickname" validate:"required,max=30"`
	SexType  string `json:"sexType"`
	AgeGroup string `json:"ageGroup"`
}

type UpdateUserRequest struct {
	Nickname string `json:"nickname" validate:"omitempty,max=30"`
	SexType  string `json:"sexType"`
	AgeGroup string `json:"ageGroup"`
}

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.User `bson:",inline"`
}

func NewUserRepository(store *docstore.Store, readAttempts int) UserRepository {
	return &userRepository{store: store, readAttempts: readAttempts}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user.Email = normalizeEmail(user.Email)
	user.PasswordHash = string(hashedPassword)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	doc := userDocument{ID: primitive.NewObjectID(), User: *user}

	_, err = r.store.C(docstore.Users).InsertOne(ctx, doc)
	if err != nil {
		if lungo.IsUniquenessError(err) {
			return models.ErrEmailTaken
		}
		return transportError("ошибка при создании пользователя", err)
	}

	user.UserID = doc.ID.Hex()
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	return retryRead(ctx, r.readAttempts, func() (*models.User, error) {
		var doc userDocument
		err := r.store.C(docstore.Users).FindOne(ctx, filter).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrNotFound
			}
			return nil, transportError("ошибка при получении пользователя", err)
		}

		user := doc.User
		user.UserID = doc.ID.Hex()
		return &user, nil
	})
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := r.findOne(ctx, idFilter(userID))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("пользователь с ID %s: %w", userID, models.ErrNotFound)
	}
	return user, err
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("пользователь с email %s: %w", email, models.ErrNotFound)
	}
	return user, err
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// UpdateUser writes the profile fields. Email and credentials are not
// changed here.
func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	update := bson.M{"$set": bson.M{
		"nickname": user.Nickname,
		"sexType":  user.SexType,
		"ageGroup": user.AgeGroup,
	}}

	result, err := r.store.C(docstore.Users).UpdateOne(ctx, idFilter(user.UserID), update)
	if err != nil {
		return transportError("ошибка при обновлении пользователя", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("пользователь с ID %s: %w", user.UserID, models.ErrNotFound)
	}

	return nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	update := bson.M{"$set": bson.M{
		"refreshToken":           refreshToken,
		"refreshTokenExpiryTime": expiryTime.UTC(),
	}}

	_, err := r.store.C(docstore.Users).UpdateOne(ctx, idFilter(userID), update)
	if err != nil {
		return transportError("ошибка при обновлении refresh token", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("недействительный или просроченный refresh token: %w", models.ErrNotFound)
	}

	user, err := r.findOne(ctx, bson.M{
		"refreshToken":           refreshToken,
		"refreshTokenExpiryTime": bson.M{"$gt": time.Now().UTC()},
	})
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("недействительный или просроченный refresh token: %w", models.ErrNotFound)
	}
	return user, err
}
