package vcs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
)

type GitHubClient struct {
	client *github.Client
}

func NewGitHubClient(client *github.Client) *GitHubClient {
	return &GitHubClient{client: client}
}

// NewGitHubClientFromOptions builds a go-github client with the given
// request timeout. apiURL selects a GitHub Enterprise host; token is optional.
func NewGitHubClientFromOptions(apiURL, token string, timeout time.Duration) (*GitHubClient, error) {
	client := github.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("github api url %q: %w", apiURL, err)
		}
	}
	return NewGitHubClient(client), nil
}

func (g *GitHubClient) LatestCommit(ctx context.Context, owner, repo, branch string) (Commit, error) {
	rc, _, err := g.client.Repositories.GetCommit(ctx, owner, repo, branch, nil)
	if err != nil {
		return Commit{}, fmt.Errorf("get commit %s for %s/%s: %w", branch, owner, repo, err)
	}
	return Commit{
		SHA:     rc.GetSHA(),
		HTMLURL: rc.GetHTMLURL(),
		Message: rc.GetCommit().GetMessage(),
	}, nil
}

// ParseGitHubRepo accepts "owner/repo", "host/owner/repo", an http(s) URL
// or an scp-style "git@host:owner/repo", with or without the .git suffix.
// Any host is dropped, so GitHub Enterprise URLs parse the same way.
func ParseGitHubRepo(repoURL string) (owner, repo string, err error) {
	path := repoURL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		if j := strings.Index(path, "/"); j >= 0 {
			path = path[j+1:]
		} else {
			path = ""
		}
	} else if at := strings.Index(path, "@"); at >= 0 && strings.Contains(path[at:], ":") {
		path = path[at+strings.Index(path[at:], ":")+1:]
	}
	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	// GitHub owners cannot contain dots, so a dotted first segment is a host.
	if len(parts) == 3 && strings.Contains(parts[0], ".") {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse GitHub repo from %q", repoURL)
	}
	return parts[0], parts[1], nil
}
