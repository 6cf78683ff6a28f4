package review

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shipitai/prreview/github"
	"github.com/shipitai/prreview/llm"
)

// PullRequestReader reads pull request metadata and diffs.
type PullRequestReader interface {
	GetPullRequest(ctx context.Context, ref github.PullRequestRef) (*github.PullRequest, error)
	FetchDiff(ctx context.Context, ref github.PullRequestRef) (string, error)
}

// CommentPoster creates comments on a pull request.
type CommentPoster interface {
	CreateIssueComment(ctx context.Context, ref github.PullRequestRef, body string) (*github.IssueComment, error)
}

// GitHubClient is what the reviewer needs from GitHub.
type GitHubClient interface {
	PullRequestReader
	CommentPoster
}

// Reviewer orchestrates the code review process.
type Reviewer struct {
	githubClient GitHubClient
	completer    llm.Completer
	prompts      *PromptBuilder
	logger       *slog.Logger
	dryRun       io.Writer
}

// NewReviewer creates a new Reviewer instance.
func NewReviewer(githubClient GitHubClient, completer llm.Completer, prompts *PromptBuilder, logger *slog.Logger) *Reviewer {
	return &Reviewer{
		githubClient: githubClient,
		completer:    completer,
		prompts:      prompts,
		logger:       logger,
	}
}

// SetDryRun makes Review write the comment body to w instead of posting it.
func (r *Reviewer) SetDryRun(w io.Writer) {
	r.dryRun = w
}

// ReviewResult contains the result of a review.
type ReviewResult struct {
	CommentID  int64
	CommentURL string
	Posted     bool
}

// Review fetches the PR, asks the model for a review and posts it as a comment.
// Steps run in order and the first failure stops the run.
// A blank model answer is returned as llm.ErrEmptyResponse instead of posting a banner-only comment.
func (r *Reviewer) Review(ctx context.Context, ref github.PullRequestRef) (*ReviewResult, error) {
	r.logger.Info("fetching pull request", "pr", ref.String())

	pr, err := r.githubClient.GetPullRequest(ctx, ref)
	if err != nil {
		return nil, err
	}

	diff, err := r.githubClient.FetchDiff(ctx, ref)
	if err != nil {
		return nil, err
	}

	r.logger.Info("fetched diff", "size", len(diff), "title", pr.Title, "url", pr.HTMLURL)

	prompt, err := r.prompts.Build(pr.Title, pr.Body, diff)
	if err != nil {
		return nil, err
	}

	r.logger.Info("generating review", "provider", r.completer.Name(), "prompt_size", len(prompt))

	text, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate review: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("failed to generate review: %w", llm.ErrEmptyResponse)
	}

	body := FormatComment(text)

	if r.dryRun != nil {
		r.logger.Info("dry run, not posting comment")
		if _, err := fmt.Fprintln(r.dryRun, body); err != nil {
			return nil, fmt.Errorf("failed to write comment: %w", err)
		}
		return &ReviewResult{}, nil
	}

	r.logger.Info("posting review comment", "pr", ref.String())

	comment, err := r.githubClient.CreateIssueComment(ctx, ref, body)
	if err != nil {
		return nil, err
	}

	r.logger.Info("posted review", "comment_id", comment.ID, "url", comment.HTMLURL)

	return &ReviewResult{
		CommentID:  comment.ID,
		CommentURL: comment.HTMLURL,
		Posted:     true,
	}, nil
}
