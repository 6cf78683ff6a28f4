package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// PullRequestsService is the subset of the go-github pull requests API used by the client.
type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*gogithub.PullRequest, *gogithub.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts gogithub.RawOptions) (string, *gogithub.Response, error)
}

// IssuesService is the subset of the go-github issues API used by the client.
type IssuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *gogithub.IssueComment) (*gogithub.IssueComment, *gogithub.Response, error)
}

// Client provides methods to interact with the GitHub API.
type Client struct {
	pulls  PullRequestsService
	issues IssuesService
}

// NewClient creates a GitHub client on top of an already authenticated HTTP client.
// apiURL overrides the REST endpoint (GitHub Enterprise, tests); empty means api.github.com.
func NewClient(httpClient *http.Client, apiURL string) (*Client, error) {
	gh := gogithub.NewClient(httpClient)
	if apiURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
		gh.BaseURL = baseURL
	}
	return NewClientWithServices(gh.PullRequests, gh.Issues), nil
}

// NewClientWithServices creates a client from explicit service implementations.
func NewClientWithServices(pulls PullRequestsService, issues IssuesService) *Client {
	return &Client{pulls: pulls, issues: issues}
}

// NewTokenClient creates a client authenticated with a personal or workflow token.
func NewTokenClient(ctx context.Context, token, apiURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewClient(oauth2.NewClient(ctx, ts), apiURL)
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// The privateKey should be the PEM-encoded private key of the GitHub App.
func NewAppClient(appID, installationID int64, privateKey []byte, apiURL string) (*Client, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	if apiURL != "" {
		transport.BaseURL = strings.TrimSuffix(apiURL, "/")
	}
	return NewClient(&http.Client{Transport: transport}, apiURL)
}

// GetPullRequest fetches the title and description of a pull request.
func (c *Client) GetPullRequest(ctx context.Context, ref PullRequestRef) (*PullRequest, error) {
	pr, _, err := c.pulls.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}
	if pr == nil {
		return nil, fmt.Errorf("failed to fetch pull request: empty response for %s", ref)
	}

	return &PullRequest{
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}

// FetchDiff fetches the unified diff for a pull request.
func (c *Client) FetchDiff(ctx context.Context, ref PullRequestRef) (string, error) {
	diff, _, err := c.pulls.GetRaw(ctx, ref.Owner, ref.Repo, ref.Number, gogithub.RawOptions{Type: gogithub.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to fetch diff: %w", err)
	}
	return diff, nil
}

// CreateIssueComment posts a comment on a PR (via the issues API).
// Every call creates a new comment.
func (c *Client) CreateIssueComment(ctx context.Context, ref PullRequestRef, body string) (*IssueComment, error) {
	comment, _, err := c.issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &gogithub.IssueComment{Body: &body})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("failed to create comment: empty response for %s", ref)
	}

	return &IssueComment{
		ID:      comment.GetID(),
		HTMLURL: comment.GetHTMLURL(),
	}, nil
}
