package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandRunner runs git with args in dir and returns stdout and stderr.
type CommandRunner func(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)

func execGit(ctx context.Context, dir string, args ...string) (string, string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = gitEnv(os.Environ())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err
}

// gitEnv pins git's messages to English; CreateTag matches on stderr text.
func gitEnv(environ []string) []string {
	return append(environ, "LC_ALL=C")
}

// CLIClient drives the git binary found on PATH.
type CLIClient struct {
	dir    string
	run    CommandRunner
	logger *zap.SugaredLogger
}

func NewCLIClient(dir string, logger *zap.SugaredLogger) *CLIClient {
	return NewCLIClientWithRunner(dir, execGit, logger)
}

func NewCLIClientWithRunner(dir string, run CommandRunner, logger *zap.SugaredLogger) *CLIClient {
	return &CLIClient{dir: dir, run: run, logger: logger}
}

func (c *CLIClient) Head(ctx context.Context) (string, error) {
	out, errMsg, err := c.run(ctx, c.dir, "rev-parse", "HEAD")
	if err != nil {
		return "", commandError("git rev-parse HEAD", errMsg, err)
	}
	return out, nil
}

func (c *CLIClient) CreateTag(ctx context.Context, name string) error {
	c.logger.Debugw("git tag", "location", c.dir, "tag", name)
	out, errMsg, err := c.run(ctx, c.dir, "tag", name)
	c.logger.Debugw("tag output", "opt", out, "errMsg", errMsg, "error", err)
	if err != nil {
		if strings.Contains(errMsg, "already exists") {
			return fmt.Errorf("git tag %s: %w", name, ErrTagExists)
		}
		return commandError("git tag "+name, errMsg, err)
	}
	return nil
}

func (c *CLIClient) PushTags(ctx context.Context, remote, branch string) error {
	c.logger.Debugw("git push", "location", c.dir, "remote", remote, "branch", branch)
	out, errMsg, err := c.run(ctx, c.dir, "push", remote, branch, "--tags")
	// git push reports progress on stderr even when it succeeds
	c.logger.Debugw("push output", "opt", out, "errMsg", errMsg, "error", err)
	if err != nil {
		return commandError(fmt.Sprintf("git push %s %s --tags", remote, branch), errMsg, err)
	}
	return nil
}

func commandError(command, errMsg string, err error) error {
	if errMsg != "" {
		return fmt.Errorf("%s: %w: %s", command, err, errMsg)
	}
	return fmt.Errorf("%s: %w", command, err)
}
