package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"whatsurv/internal/config"
	"whatsurv/internal/docstore"
	"whatsurv/internal/identity"
	"whatsurv/internal/models"
	"whatsurv/internal/repository"
)

type fixture struct {
	store    *docstore.Store
	repo     *repository.Repository
	services *Service
	cfg      *config.Config
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store, err := docstore.OpenMemory(ctx, "test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	cfg := &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		CounterMode:          config.CounterModeAtomic,
		ReadRetryAttempts:    1,
	}

	repo := repository.NewRepository(store, nil, cfg)

	return &fixture{
		store:    store,
		repo:     repo,
		services: NewService(repo, cfg, nil),
		cfg:      cfg,
	}
}

func as(uid string) context.Context {
	return identity.WithIdentity(context.Background(), &models.Identity{
		UID:         uid,
		Email:       uid + "@example.com",
		DisplayName: uid,
	})
}

func surveyRequest(questions int) repository.CreatePostRequest {
	req := repository.CreatePostRequest{
		Title:            "Опрос",
		Content:          "Описание",
		Category:         "it",
		SexType:          "all",
		AgeGroup:         "20s",
		ResearchType:     "online",
		ResearchLocation: "online",
		ResearchTime:     "3 min",
	}
	for i := 0; i < questions; i++ {
		req.SurveyData = append(req.SurveyData, models.Question{
			Question: "Вопрос",
			Options:  []string{"A", "B", "", ""},
		})
	}
	return req
}
