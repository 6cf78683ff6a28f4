package github

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRef indicates the CI ref does not point at a pull request merge commit.
	ErrInvalidRef = errors.New("ref is not a pull request merge ref")
	// ErrInvalidRepository indicates the repository identifier is not "owner/name".
	ErrInvalidRepository = errors.New("repository must be in owner/name form")
)

var pullRefPattern = regexp.MustCompile(`refs/pull/(\d+)/merge`)

// ParseRepository splits an "owner/name" identifier.
func ParseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, repository)
	}
	return parts[0], parts[1], nil
}

// ParsePullRef extracts the pull request number from a ref like "refs/pull/123/merge".
func ParsePullRef(ref string) (int, error) {
	match := pullRefPattern.FindStringSubmatch(ref)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	number, err := strconv.Atoi(match[1])
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	return number, nil
}

// ResolvePullRequest builds a PullRequestRef from a repository identifier and a CI ref.
// The ref is checked first so a push build fails before anything else is looked at.
func ResolvePullRequest(repository, ref string) (PullRequestRef, error) {
	number, err := ParsePullRef(ref)
	if err != nil {
		return PullRequestRef{}, err
	}

	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return PullRequestRef{}, err
	}

	return PullRequestRef{Owner: owner, Repo: repo, Number: number}, nil
}
