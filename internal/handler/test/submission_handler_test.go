package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"

	"whatsurv/internal/models"
	"whatsurv/internal/service"
	"whatsurv/internal/survey"
)

func TestGetSubmissionHandler(t *testing.T) {
	tests := []struct {
		name      string
		uid       string
		submitted bool
	}{
		{"Опрос уже пройден", "user-1", true},
		{"Опрос не пройден", "user-2", false},
		{"Анонимный пользователь", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.submission.On("HasSubmitted", mock.Anything, "p1").Return(tt.submitted, nil)

			rr := serve(m, httptest.NewRequest(http.MethodGet, "/api/posts/p1/submission", nil), tt.uid)

			body := rr.Body.String()
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "p1", gjson.Get(body, "postId").String())
			assert.Equal(t, tt.submitted, gjson.Get(body, "submitted").Bool())
			m.assertExpectations(t)
		})
	}
}

func TestSubmitHandler(t *testing.T) {
	answers := []string{"да", "нет"}

	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockSubmissionService)
		expectedStatus int
	}{
		{
			name: "Ответы приняты",
			body: `{"answers": ["да", "нет"]}`,
			mockSetup: func(s *MockSubmissionService) {
				s.On("Submit", asUser("user-1"), "p1", answers).
					Return(&models.Submission{ID: "s1", PostID: "p1", UserID: "user-1", Answers: answers}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Повторная отправка",
			body: `{"answers": ["да", "нет"]}`,
			mockSetup: func(s *MockSubmissionService) {
				s.On("Submit", mock.Anything, "p1", answers).Return(nil, models.ErrDuplicateSubmission)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Не все ответы",
			body: `{"answers": ["да", ""]}`,
			mockSetup: func(s *MockSubmissionService) {
				s.On("Submit", mock.Anything, "p1", []string{"да", ""}).
					Return(nil, fmt.Errorf("%w: 1 из 2", models.ErrIncompleteAnswers))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Пост удален",
			body: `{"answers": ["да", "нет"]}`,
			mockSetup: func(s *MockSubmissionService) {
				s.On("Submit", mock.Anything, "p1", answers).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Неверный JSON",
			body:           `{"answers": "да"}`,
			mockSetup:      func(s *MockSubmissionService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			tt.mockSetup(m.submission)

			rr := serve(m, postJSON("/api/posts/p1/submissions", tt.body), "user-1")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusCreated {
				body := rr.Body.String()
				assert.Equal(t, "s1", gjson.Get(body, "id").String())
				assert.Equal(t, "нет", gjson.Get(body, "answers.1").String())
			}
			m.assertExpectations(t)
		})
	}
}

func TestProgressHandler(t *testing.T) {
	m := newMocks()
	m.submission.On("Progress", mock.Anything, "p1", []string{"да", ""}).Return(&service.ProgressResult{
		Answered: 1,
		Total:    2,
		Progress: 50,
		Status:   survey.StatusInProgress,
	}, nil)

	rr := serve(m, postJSON("/api/posts/p1/progress", `{"answers": ["да", ""]}`), "")

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), gjson.Get(body, "answered").Int())
	assert.Equal(t, float64(50), gjson.Get(body, "progress").Float())
	assert.Equal(t, "InProgress", gjson.Get(body, "status").String())
	assert.False(t, gjson.Get(body, "complete").Bool())
	m.assertExpectations(t)
}

func TestGetStatsHandler(t *testing.T) {
	m := newMocks()
	m.report.On("AnswerDistribution", asUser("owner"), "p1").Return(&models.AnswerDistribution{
		PostID:      "p1",
		Submissions: 3,
		Answers: []models.AnswerCount{
			{QuestionIndex: 0, Answer: "да", Count: 2},
			{QuestionIndex: 0, Answer: "нет", Count: 1},
		},
	}, nil)
	m.report.On("AnswerDistribution", asUser("other"), "p1").Return(nil, models.ErrForbidden)

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/api/posts/p1/stats", nil), "owner")

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(3), gjson.Get(body, "submissions").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "answers.0.count").Int())

	rr = serve(m, httptest.NewRequest(http.MethodGet, "/api/posts/p1/stats", nil), "other")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	m.assertExpectations(t)
}
