// Package docstore connects the application to its document database.
//
// All access goes through the lungo client interfaces so the same code runs
// against a MongoDB deployment or an embedded in-memory engine.
package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whatsurv/internal/config"
)

// Logical collection names shared with the data written by the web client.
const (
	Posts       = "posts"
	LitePosts   = "litesurveyposts"
	Submissions = "submitedposts"
	UserPosts   = "userPosts"
	Users       = "users"
	Images      = "images"
)

type Store struct {
	Client lungo.IClient
	DB     lungo.IDatabase
	engine *lungo.Engine
}

// Connect opens the store described by the configuration.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.DocStore.InMemory {
		slog.Info("using in-memory document store", "database", cfg.DocStore.Database)
		return OpenMemory(ctx, cfg.DocStore.Database)
	}

	slog.Info("connecting to document store", "database", cfg.DocStore.Database)

	client, err := lungo.Connect(ctx, options.Client().ApplyURI(cfg.DocStore.URI))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к хранилищу документов: %w", err)
	}

	store := &Store{
		Client: client,
		DB:     client.Database(cfg.DocStore.Database),
	}

	if err := store.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при проверке подключения к хранилищу документов: %w", err)
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		slog.Warn("failed to create indexes", "error", err)
	}

	return store, nil
}

// OpenMemory opens an embedded store that keeps all data in memory.
func OpenMemory(ctx context.Context, database string) (*Store, error) {
	client, engine, err := lungo.Open(ctx, lungo.Options{
		Store: lungo.NewMemoryStore(),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть хранилище в памяти: %w", err)
	}

	store := &Store{
		Client: client,
		DB:     client.Database(database),
		engine: engine,
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) C(name string) lungo.ICollection {
	return s.DB.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		Posts: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		Submissions: {
			{
				Keys:    bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		UserPosts: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "postId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		Users: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := s.C(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ошибка при создании индексов %s: %w", collection, err)
		}
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return fmt.Errorf("подключение к хранилищу документов не инициализировано")
	}

	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	err := s.Client.Disconnect(ctx)
	if s.engine != nil {
		s.engine.Close()
	}
	return err
}
