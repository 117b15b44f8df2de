package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsurv/internal/models"
	"whatsurv/internal/survey"
)

func TestSubmissionWorkflow_EndToEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := as("A")
	respondent := as("B")

	post, err := f.services.Post.CreatePost(owner, surveyRequest(3))
	require.NoError(t, err)

	posts, err := f.services.Post.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, int64(0), posts[0].Views)

	done, err := f.services.Submission.HasSubmitted(respondent, post.ID)
	require.NoError(t, err)
	assert.False(t, done)

	sub, err := f.services.Submission.Submit(respondent, post.ID, []string{"A", "B", "A"})
	require.NoError(t, err)
	assert.Equal(t, "B", sub.UserID)
	assert.Equal(t, "A", sub.Nickname, "данные поста копируются в ответ")
	assert.Equal(t, "B@example.com", sub.UserEmail)

	done, err = f.services.Submission.HasSubmitted(respondent, post.ID)
	require.NoError(t, err)
	assert.True(t, done)

	_, err = f.services.Submission.Submit(respondent, post.ID, []string{"B", "B", "B"})
	assert.ErrorIs(t, err, models.ErrDuplicateSubmission)

	subs, err := f.repo.Submission.ListByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, []string{"A", "B", "A"}, subs[0].Answers)

	completions, err := f.services.Submission.ListCompletions(respondent)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, post.ID, completions[0].PostID)

	require.NoError(t, f.services.Post.DeletePost(owner, post.ID))

	posts, err = f.services.Post.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	done, err = f.repo.Submission.HasMarker(ctx, "B", post.ID)
	require.NoError(t, err)
	assert.False(t, done)

	subs, err = f.repo.Submission.ListByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubmit_Rejections(t *testing.T) {
	f := setup(t)

	post, err := f.services.Post.CreatePost(as("owner"), surveyRequest(2))
	require.NoError(t, err)

	tests := []struct {
		name    string
		ctx     context.Context
		postID  string
		answers []string
		wantErr error
	}{
		{"Без авторизации", context.Background(), post.ID, []string{"A", "A"}, models.ErrUnauthenticated},
		{"Пост не найден", as("user"), "missing", []string{"A", "A"}, models.ErrNotFound},
		{"Не все ответы", as("user"), post.ID, []string{"A", " "}, models.ErrIncompleteAnswers},
		{"Пустой массив ответов", as("user"), post.ID, nil, models.ErrIncompleteAnswers},
		{"Неизвестный вариант", as("user"), post.ID, []string{"A", "C"}, models.ErrInvalidAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Submission.Submit(tt.ctx, tt.postID, tt.answers)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	done, err := f.services.Submission.HasSubmitted(as("user"), post.ID)
	require.NoError(t, err)
	assert.False(t, done, "отклоненные ответы не оставляют отметку")
}

func TestSubmit_UsesProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user := &models.User{Email: "resp@example.com", Nickname: "респондент", SexType: "female", AgeGroup: "30s"}
	require.NoError(t, f.repo.User.CreateUser(ctx, user, "secret1"))

	post, err := f.services.Post.CreatePost(as("owner"), surveyRequest(1))
	require.NoError(t, err)

	sub, err := f.services.Submission.Submit(as(user.UserID), post.ID, []string{"B"})
	require.NoError(t, err)
	assert.Equal(t, "resp@example.com", sub.UserEmail)
	assert.Equal(t, "респондент", sub.UserNickname)
	assert.Equal(t, "female", sub.UserSexType)
}

func TestHasSubmitted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("Анонимный пользователь", func(t *testing.T) {
		done, err := f.services.Submission.HasSubmitted(ctx, "any")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("Отметка восстанавливается по ответу", func(t *testing.T) {
		_, err := f.repo.Submission.Create(ctx, &models.Submission{PostID: "post-1", UserID: "user-1", Answers: []string{"A"}})
		require.NoError(t, err)

		marked, err := f.repo.Submission.HasMarker(ctx, "user-1", "post-1")
		require.NoError(t, err)
		require.False(t, marked)

		done, err := f.services.Submission.HasSubmitted(as("user-1"), "post-1")
		require.NoError(t, err)
		assert.True(t, done)

		marked, err = f.repo.Submission.HasMarker(ctx, "user-1", "post-1")
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestProgress(t *testing.T) {
	f := setup(t)

	post, err := f.services.Post.CreatePost(as("owner"), surveyRequest(4))
	require.NoError(t, err)

	tests := []struct {
		name     string
		answers  []string
		answered int
		status   survey.Status
		complete bool
	}{
		{"Не начат", nil, 0, survey.StatusNotStarted, false},
		{"Половина", []string{"A", "", "B"}, 2, survey.StatusInProgress, false},
		{"Все ответы", []string{"A", "A", "B", "B", "лишний"}, 4, survey.StatusInProgress, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.services.Submission.Progress(context.Background(), post.ID, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.answered, res.Answered)
			assert.Equal(t, 4, res.Total)
			assert.InDelta(t, float64(tt.answered)*25, res.Progress, 0.001)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.complete, res.Complete)
		})
	}

	_, err = f.services.Submission.Progress(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListCompletions_Unauthenticated(t *testing.T) {
	f := setup(t)

	_, err := f.services.Submission.ListCompletions(context.Background())
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestSubmit_Concurrent(t *testing.T) {
	f := setup(t)
	ctx := as("user")

	post, err := f.services.Post.CreatePost(as("owner"), surveyRequest(1))
	require.NoError(t, err)

	const workers = 20
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.services.Submission.Submit(ctx, post.ID, []string{"A"})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, models.ErrDuplicateSubmission)
	}
	assert.Equal(t, 1, accepted)

	subs, err := f.repo.Submission.ListByPostID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
