package tagger

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/commit-tagger/pkg/vcs"
)

const DefaultFetchTimeout = 5 * time.Second

type Options struct {
	Owner        string
	Repo         string
	Branch       string
	Remote       string
	Policy       Policy
	FetchTimeout time.Duration
	DryRun       bool
}

// Result describes one run. Tagged and Pushed record how far it got.
type Result struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	Remote    string `json:"remote"`
	Commit    string `json:"commit"`
	CommitURL string `json:"commit_url,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Tag       string `json:"tag"`
	Policy    Policy `json:"policy"`
	Tagged    bool   `json:"tagged"`
	Pushed    bool   `json:"pushed"`
	DryRun    bool   `json:"dry_run"`
}

type Tagger struct {
	source vcs.CommitSource
	vc     vcs.VersionControl
	opts   Options
	logger *zap.SugaredLogger
}

func New(source vcs.CommitSource, vc vcs.VersionControl, opts Options, logger *zap.SugaredLogger) *Tagger {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Policy == "" {
		opts.Policy = PolicyShort
	}
	return &Tagger{
		source: source,
		vc:     vc,
		opts:   opts,
		logger: logger,
	}
}

// RunOnce fetches the branch tip, tags HEAD with the derived name and pushes
// the branch with all tags. A failed tag skips the push. A failed push leaves
// the local tag in place.
func (t *Tagger) RunOnce(ctx context.Context) (Result, error) {
	res := Result{
		Owner:  t.opts.Owner,
		Repo:   t.opts.Repo,
		Branch: t.opts.Branch,
		Remote: t.opts.Remote,
		Policy: t.opts.Policy,
		DryRun: t.opts.DryRun,
	}

	commit, err := t.fetch(ctx)
	if err != nil {
		return res, err
	}
	if commit.SHA == "" {
		return res, &MissingFieldError{Field: "sha"}
	}
	if !ValidSHA(commit.SHA) {
		return res, &InvalidCommitError{SHA: commit.SHA}
	}
	res.Commit = commit.SHA
	res.CommitURL = commit.HTMLURL
	res.Subject, _, _ = strings.Cut(commit.Message, "\n")
	res.Tag = DeriveTag(commit.SHA, t.opts.Policy)

	t.logger.Infow("latest commit", "repo", t.opts.Owner+"/"+t.opts.Repo, "branch", t.opts.Branch, "sha", commit.SHA, "tag", res.Tag)

	if t.opts.DryRun {
		t.logger.Infow("dry run: skipping tag and push", "tag", res.Tag)
		return res, nil
	}

	t.checkHead(ctx, commit.SHA)

	if err := t.vc.CreateTag(ctx, res.Tag); err != nil {
		t.logger.Errorw("error in creating tag", "tag", res.Tag, "err", err)
		return res, &TagCreationError{Tag: res.Tag, Err: err}
	}
	res.Tagged = true

	if err := t.vc.PushTags(ctx, t.opts.Remote, t.opts.Branch); err != nil {
		t.logger.Errorw("error in pushing tags", "remote", t.opts.Remote, "branch", t.opts.Branch, "err", err)
		return res, &PushError{Remote: t.opts.Remote, Branch: t.opts.Branch, Err: err}
	}
	res.Pushed = true

	t.logger.Infow("tag pushed", "tag", res.Tag, "remote", t.opts.Remote)
	return res, nil
}

func (t *Tagger) fetch(ctx context.Context) (vcs.Commit, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.FetchTimeout)
	defer cancel()

	commit, err := t.source.LatestCommit(ctx, t.opts.Owner, t.opts.Repo, t.opts.Branch)
	if err != nil {
		return vcs.Commit{}, &FetchError{Owner: t.opts.Owner, Repo: t.opts.Repo, Branch: t.opts.Branch, Err: err}
	}
	return commit, nil
}

// checkHead warns when the tag will not point at the fetched commit. The tag
// always goes on HEAD; in a post-commit hook the new commit is usually not on
// the remote yet.
func (t *Tagger) checkHead(ctx context.Context, sha string) {
	head, err := t.vc.Head(ctx)
	if err != nil {
		t.logger.Debugw("could not resolve HEAD", "err", err)
		return
	}
	if head != sha {
		t.logger.Warnw("local HEAD differs from remote branch tip, tagging HEAD", "head", head, "remote", sha)
	}
}
