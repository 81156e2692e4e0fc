// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// CommitComment is a single comment on a commit. Path is empty for a
// commit-level comment and names a file for an inline comment.
type CommitComment struct {
	Body    string
	Path    string
	HTMLURL string
}

// IsInline reports whether the comment is attached to a file rather
// than to the commit as a whole.
func (c CommitComment) IsInline() bool { return c.Path != "" }

// Client defines the commit-comment operations needed for grading.
type Client interface {
	ListCommitComments(ctx context.Context, owner, repo, sha string) ([]CommitComment, error)
	CreateCommitComment(ctx context.Context, owner, repo, sha, body string) (*CommitComment, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps the official go-github client to provide a focused,
// testable interface for the grading operations.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	return &gitHubClient{client: client, logger: logger}
}

// ListCommitComments retrieves all comments on a commit in the order
// GitHub returns them, which is chronological ascending. It handles
// pagination automatically; the API returns at most 100 comments per page.
func (g *gitHubClient) ListCommitComments(ctx context.Context, owner, repo, sha string) ([]CommitComment, error) {
	var all []CommitComment
	opts := &github.ListOptions{PerPage: 100}

	for {
		comments, resp, err := g.client.Repositories.ListCommitComments(ctx, owner, repo, sha, opts)
		if err != nil {
			g.logger.Error("failed to list commit comments", "owner", owner, "repo", repo, "sha", sha, "error", err)
			return nil, err
		}

		for _, c := range comments {
			all = append(all, CommitComment{
				Body:    c.GetBody(),
				Path:    c.GetPath(),
				HTMLURL: c.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateCommitComment posts a new commit-level comment and returns it
// with the URL GitHub assigned.
func (g *gitHubClient) CreateCommitComment(ctx context.Context, owner, repo, sha, body string) (*CommitComment, error) {
	comment := &github.RepositoryComment{Body: &body}
	created, _, err := g.client.Repositories.CreateComment(ctx, owner, repo, sha, comment)
	if err != nil {
		g.logger.Error("failed to create commit comment", "owner", owner, "repo", repo, "sha", sha, "error", err)
		return nil, err
	}

	return &CommitComment{
		Body:    created.GetBody(),
		Path:    created.GetPath(),
		HTMLURL: created.GetHTMLURL(),
	}, nil
}
