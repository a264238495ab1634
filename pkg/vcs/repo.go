package vcs

import (
	"context"
	"errors"
)

// ErrTagExists is returned by VersionControl implementations when the tag
// name is already taken in the local repository.
var ErrTagExists = errors.New("tag already exists")

type Commit struct {
	SHA     string
	HTMLURL string
	Message string
}

type CommitSource interface {
	// LatestCommit returns the commit at the tip of branch. A commit with an
	// empty SHA means the API response carried no identifier.
	LatestCommit(ctx context.Context, owner, repo, branch string) (Commit, error)
}

type VersionControl interface {
	// Head returns the commit the local checkout points at.
	Head(ctx context.Context) (string, error)

	// CreateTag creates a lightweight tag pointing at HEAD.
	CreateTag(ctx context.Context, name string) error

	// PushTags pushes branch and all tags to remote.
	PushTags(ctx context.Context, remote, branch string) error
}
