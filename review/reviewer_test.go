package review

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shipitai/prreview/github"
	"github.com/shipitai/prreview/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testRef = github.PullRequestRef{Owner: "acme", Repo: "widgets", Number: 42}

type mockGitHub struct {
	mock.Mock
}

func (m *mockGitHub) GetPullRequest(ctx context.Context, ref github.PullRequestRef) (*github.PullRequest, error) {
	args := m.Called(ctx, ref)
	pr, _ := args.Get(0).(*github.PullRequest)
	return pr, args.Error(1)
}

func (m *mockGitHub) FetchDiff(ctx context.Context, ref github.PullRequestRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *mockGitHub) CreateIssueComment(ctx context.Context, ref github.PullRequestRef, body string) (*github.IssueComment, error) {
	args := m.Called(ctx, ref, body)
	c, _ := args.Get(0).(*github.IssueComment)
	return c, args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockCompleter) Name() string { return "mock" }

func newTestReviewer(t *testing.T, gh *mockGitHub, completer *mockCompleter) *Reviewer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReviewer(gh, completer, newPromptBuilder(t, "ko"), logger)
}

func TestReviewer_Review(t *testing.T) {
	t.Run("posts banner and trimmed review", func(t *testing.T) {
		gh := &mockGitHub{}
		completer := &mockCompleter{}

		gh.On("GetPullRequest", mock.Anything, testRef).
			Return(&github.PullRequest{Title: "Add widgets", HTMLURL: "https://github.com/acme/widgets/pull/42"}, nil).Once()
		gh.On("FetchDiff", mock.Anything, testRef).Return("+widget", nil).Once()
		completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Add widgets") && strings.Contains(p, "(설명 없음)") && strings.Contains(p, "+widget")
		})).Return("\n  [요약]\n- fine  \n", nil).Once()
		gh.On("CreateIssueComment", mock.Anything, testRef, Banner+"\n\n[요약]\n- fine").
			Return(&github.IssueComment{ID: 9, HTMLURL: "https://example/9"}, nil).Once()

		result, err := newTestReviewer(t, gh, completer).Review(context.Background(), testRef)
		require.NoError(t, err)
		assert.True(t, result.Posted)
		assert.Equal(t, int64(9), result.CommentID)
		assert.Equal(t, "https://example/9", result.CommentURL)
		gh.AssertExpectations(t)
		completer.AssertExpectations(t)
	})

	t.Run("logs pull request url", func(t *testing.T) {
		gh := &mockGitHub{}
		completer := &mockCompleter{}

		gh.On("GetPullRequest", mock.Anything, testRef).
			Return(&github.PullRequest{Title: "t", HTMLURL: "https://github.com/acme/widgets/pull/42"}, nil).Once()
		gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
		completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		reviewer := NewReviewer(gh, completer, newPromptBuilder(t, "ko"), logger)
		reviewer.SetDryRun(io.Discard)

		_, err := reviewer.Review(context.Background(), testRef)
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "url=https://github.com/acme/widgets/pull/42")
	})

	t.Run("dry run writes body and does not post", func(t *testing.T) {
		gh := &mockGitHub{}
		completer := &mockCompleter{}

		gh.On("GetPullRequest", mock.Anything, testRef).
			Return(&github.PullRequest{Title: "t", Body: "b"}, nil).Once()
		gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
		completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

		var out bytes.Buffer
		reviewer := newTestReviewer(t, gh, completer)
		reviewer.SetDryRun(&out)

		result, err := reviewer.Review(context.Background(), testRef)
		require.NoError(t, err)
		assert.False(t, result.Posted)
		assert.Equal(t, Banner+"\n\nok\n", out.String())
		gh.AssertNotCalled(t, "CreateIssueComment", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviewer_ReviewStopsAtFirstFailure(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(gh *mockGitHub, c *mockCompleter)
		// methods that must not be reached after the failing step
		notCalled []string
		wantErr   error
	}{
		{
			name: "metadata fetch fails",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(nil, errBoom).Once()
			},
			notCalled: []string{"FetchDiff", "Complete", "CreateIssueComment"},
		},
		{
			name: "diff fetch fails",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(&github.PullRequest{Title: "t"}, nil).Once()
				gh.On("FetchDiff", mock.Anything, testRef).Return("", errBoom).Once()
			},
			notCalled: []string{"Complete", "CreateIssueComment"},
		},
		{
			name: "completion fails",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(&github.PullRequest{Title: "t"}, nil).Once()
				gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
				c.On("Complete", mock.Anything, mock.Anything).Return("", errBoom).Once()
			},
			notCalled: []string{"CreateIssueComment"},
		},
		{
			name: "blank completion",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(&github.PullRequest{Title: "t"}, nil).Once()
				gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
				c.On("Complete", mock.Anything, mock.Anything).Return("  \n", nil).Once()
			},
			notCalled: []string{"CreateIssueComment"},
			wantErr:   llm.ErrEmptyResponse,
		},
		{
			name: "empty completion is not posted as banner only",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(&github.PullRequest{Title: "t"}, nil).Once()
				gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
				c.On("Complete", mock.Anything, mock.Anything).Return("", nil).Once()
			},
			notCalled: []string{"CreateIssueComment"},
			wantErr:   llm.ErrEmptyResponse,
		},
		{
			name: "comment post fails",
			setup: func(gh *mockGitHub, c *mockCompleter) {
				gh.On("GetPullRequest", mock.Anything, testRef).Return(&github.PullRequest{Title: "t"}, nil).Once()
				gh.On("FetchDiff", mock.Anything, testRef).Return("d", nil).Once()
				c.On("Complete", mock.Anything, mock.Anything).Return("review", nil).Once()
				gh.On("CreateIssueComment", mock.Anything, testRef, mock.Anything).Return(nil, errBoom).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &mockGitHub{}
			completer := &mockCompleter{}
			tt.setup(gh, completer)

			result, err := newTestReviewer(t, gh, completer).Review(context.Background(), testRef)
			require.Error(t, err)
			assert.Nil(t, result)
			wantErr := tt.wantErr
			if wantErr == nil {
				wantErr = errBoom
			}
			assert.ErrorIs(t, err, wantErr)

			for _, method := range tt.notCalled {
				if method == "Complete" {
					completer.AssertNotCalled(t, method, mock.Anything, mock.Anything)
					continue
				}
				gh.AssertNumberOfCalls(t, method, 0)
			}
			gh.AssertExpectations(t)
			completer.AssertExpectations(t)
		})
	}
}
