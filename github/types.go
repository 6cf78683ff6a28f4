// Package github provides the GitHub API client used to read pull requests and post review comments.
package github

import "fmt"

// PullRequestRef identifies a pull request on a repository.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the ref in "owner/repo#number" form.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// PullRequest holds the pull request metadata needed for a review.
type PullRequest struct {
	Title   string
	Body    string // empty when the PR has no description
	HTMLURL string
}

// IssueComment represents a created issue comment.
type IssueComment struct {
	ID      int64
	HTMLURL string
}
