package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

// GoGitClient tags and pushes in-process, without a git binary.
type GoGitClient struct {
	dir    string
	repo   *git.Repository
	token  string
	logger *zap.SugaredLogger
}

func NewGoGitClient(repo *git.Repository, token string, logger *zap.SugaredLogger) *GoGitClient {
	return &GoGitClient{repo: repo, token: token, logger: logger}
}

// OpenGoGitClient returns a client for the repository containing dir. The
// repository is opened on first use, walking up to the enclosing .git
// directory, so a run that never touches it does not need one.
func OpenGoGitClient(dir, token string, logger *zap.SugaredLogger) *GoGitClient {
	if dir == "" {
		dir = "."
	}
	return &GoGitClient{dir: dir, token: token, logger: logger}
}

func (c *GoGitClient) repository() (*git.Repository, error) {
	if c.repo != nil {
		return c.repo, nil
	}
	repo, err := git.PlainOpenWithOptions(c.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", c.dir, err)
	}
	c.repo = repo
	return repo, nil
}

func (c *GoGitClient) Head(ctx context.Context) (string, error) {
	repo, err := c.repository()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (c *GoGitClient) CreateTag(ctx context.Context, name string) error {
	repo, err := c.repository()
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	c.logger.Debugw("creating tag", "tag", name, "hash", head.Hash().String())
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return fmt.Errorf("create tag %s: %w", name, ErrTagExists)
		}
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

func (c *GoGitClient) PushTags(ctx context.Context, remote, branch string) error {
	repo, err := c.repository()
	if err != nil {
		return err
	}
	r, err := repo.Remote(remote)
	if err != nil {
		return fmt.Errorf("remote %s: %w", remote, err)
	}

	opts := &git.PushOptions{
		RemoteName: remote,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
			config.RefSpec("refs/tags/*:refs/tags/*"),
		},
		Auth: c.authFor(r.Config().URLs),
	}
	c.logger.Debugw("pushing", "remote", remote, "branch", branch, "urls", r.Config().URLs)

	err = repo.PushContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		c.logger.Debugw("remote already up to date", "remote", remote)
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	return nil
}

// authFor returns token auth for https remotes. SSH remotes fall back to the
// transport defaults (ssh-agent).
func (c *GoGitClient) authFor(urls []string) transport.AuthMethod {
	if c.token == "" || len(urls) == 0 {
		return nil
	}
	if !strings.HasPrefix(urls[0], "https://") && !strings.HasPrefix(urls[0], "http://") {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: c.token}
}
