package test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"

	"whatsurv/internal/models"
	"whatsurv/internal/repository"
)

func TestGetCurrentUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		uid            string
		mockSetup      func(*MockUserService)
		expectedStatus int
	}{
		{
			name: "Профиль найден",
			uid:  "user-1",
			mockSetup: func(s *MockUserService) {
				s.On("GetProfile", asUser("user-1")).
					Return(&models.User{UserID: "user-1", Email: "user@example.com", Nickname: "user", PasswordHash: "hash"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Без авторизации",
			mockSetup: func(s *MockUserService) {
				s.On("GetProfile", mock.Anything).Return(nil, models.ErrUnauthenticated)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Профиль не создан",
			uid:  "user-2",
			mockSetup: func(s *MockUserService) {
				s.On("GetProfile", asUser("user-2")).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			tt.mockSetup(m.user)

			rr := serve(m, httptest.NewRequest(http.MethodGet, "/api/me", nil), tt.uid)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				body := rr.Body.String()
				assert.Equal(t, "user-1", gjson.Get(body, "userId").String())
				assert.False(t, gjson.Get(body, "passwordHash").Exists())
			}
			m.assertExpectations(t)
		})
	}
}

func TestUpdateCurrentUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockUserService)
		expectedStatus int
	}{
		{
			name: "Успешное обновление",
			body: `{"nickname": "новый", "ageGroup": "30s"}`,
			mockSetup: func(s *MockUserService) {
				s.On("UpdateProfile", asUser("user-1"), repository.UpdateUserRequest{Nickname: "новый", AgeGroup: "30s"}).
					Return(&models.User{UserID: "user-1", Nickname: "новый", AgeGroup: "30s"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Слишком длинный никнейм",
			body:           `{"nickname": "` + strings.Repeat("н", 31) + `"}`,
			mockSetup:      func(s *MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Неверный JSON",
			body:           `nickname`,
			mockSetup:      func(s *MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			tt.mockSetup(m.user)

			req := httptest.NewRequest(http.MethodPut, "/api/me", strings.NewReader(tt.body))
			rr := serve(m, req, "user-1")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "новый", gjson.Get(rr.Body.String(), "nickname").String())
			}
			m.assertExpectations(t)
		})
	}
}

func TestGetCompletionsHandler(t *testing.T) {
	m := newMocks()
	m.submission.On("ListCompletions", asUser("user-1")).Return([]models.CompletionMarker{
		{UserID: "user-1", PostID: "p2", CreatedAt: time.Now(), IsDone: true},
		{UserID: "user-1", PostID: "p1", CreatedAt: time.Now().Add(-time.Hour), IsDone: true},
	}, nil)
	m.submission.On("ListCompletions", mock.Anything).Return(nil, models.ErrUnauthenticated)

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/api/me/completions", nil), "user-1")

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(2), gjson.Get(body, "#").Int())
	assert.Equal(t, "p2", gjson.Get(body, "0.postId").String())
	assert.True(t, gjson.Get(body, "1.isDone").Bool())

	rr = serve(m, httptest.NewRequest(http.MethodGet, "/api/me/completions", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
