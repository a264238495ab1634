package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/commit-tagger/pkg/config"
	"github.com/commit-tagger/pkg/reporter"
	"github.com/commit-tagger/pkg/tagger"
	"github.com/commit-tagger/pkg/vcs"
)

var (
	version = "dev"
	commit  = "none"
)

const (
	exitFatal   = 1
	exitUsage   = 2
	exitTagFail = 3
	exitPush    = 4
)

func main() {
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "commit-tagger",
		Short:   "Tag the latest commit of a GitHub branch and push the tag",
		Long:    `Looks up the latest commit of a branch through the GitHub API, creates a lightweight tag named after its SHA on the local checkout, and pushes the branch with all tags. Meant to run from a post-commit hook.`,
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, out)
		},
	}

	defaults := config.Default()
	rootCmd.Flags().String("owner", defaults.Owner, "GitHub repository owner")
	rootCmd.Flags().String("repo", defaults.Repo, "GitHub repository name, or owner/repo")
	rootCmd.Flags().String("branch", defaults.Branch, "Branch whose latest commit is tagged and pushed")
	rootCmd.Flags().String("remote", defaults.Remote, "Remote to push to")
	rootCmd.Flags().String("tag-policy", defaults.TagPolicy, "Tag name policy: short (8 chars) | full")
	rootCmd.Flags().String("backend", defaults.Backend, "Git backend: cli | go-git")
	rootCmd.Flags().String("dir", defaults.Dir, "Path inside the local repository")
	rootCmd.Flags().String("api-url", "", "GitHub Enterprise API URL")
	rootCmd.Flags().String("github-token", "", "GitHub token for API access (default $GITHUB_TOKEN)")
	rootCmd.Flags().Duration("timeout", defaults.Timeout, "Timeout for the GitHub API request")
	rootCmd.Flags().Bool("dry-run", false, "Resolve the tag name without creating or pushing it")
	rootCmd.Flags().String("output", defaults.Output, "Output format: table | json")
	rootCmd.Flags().String("config", ".commit-tagger.yml", "Path to config file")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
	return rootCmd
}

func run(cmd *cobra.Command, out io.Writer) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return usageError{err}
	}
	defer logger.Sync()

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return usageError{err}
	}
	// Past validation, failures are about the run, not the invocation.
	cmd.SilenceUsage = true

	source, err := vcs.NewGitHubClientFromOptions(cfg.APIURL, cfg.Token, cfg.Timeout)
	if err != nil {
		return usageError{err}
	}
	vc := newVersionControl(cfg, logger)

	t := tagger.New(source, vc, cfg.TaggerOptions(), logger)
	res, runErr := t.RunOnce(context.Background())
	if res.Tag != "" {
		if err := reporter.New(cfg.Output, out).Report(res); err != nil {
			logger.Errorw("error in writing report", "err", err)
		}
	}
	return runErr
}

func loadConfig(cmd *cobra.Command, logger *zap.SugaredLogger) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if cmd.Flags().Changed("config") || !errors.Is(err, os.ErrNotExist) {
			logger.Warnw("could not load config file, using defaults", "path", cfgPath, "err", err)
		}
		cfg = config.Default()
	}
	cfg, err = config.MergeEnv(cfg)
	if err != nil {
		return nil, err
	}
	cfg = config.MergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugw("configuration", "owner", cfg.Owner, "repo", cfg.Repo, "branch", cfg.Branch,
		"remote", cfg.Remote, "policy", cfg.TagPolicy, "backend", cfg.Backend, "dryRun", cfg.DryRun)
	return cfg, nil
}

func newVersionControl(cfg *config.Config, logger *zap.SugaredLogger) vcs.VersionControl {
	if cfg.Backend == config.BackendGoGit {
		return vcs.OpenGoGitClient(cfg.Dir, cfg.Token, logger)
	}
	return vcs.NewCLIClient(cfg.Dir, logger)
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps the error chain to the process exit status.
func exitCode(err error) int {
	var (
		fetchErr   *tagger.FetchError
		missingErr *tagger.MissingFieldError
		invalidErr *tagger.InvalidCommitError
		tagErr     *tagger.TagCreationError
		pushErr    *tagger.PushError
	)
	switch {
	case errors.As(err, &fetchErr), errors.As(err, &missingErr), errors.As(err, &invalidErr):
		return exitFatal
	case errors.As(err, &tagErr):
		return exitTagFail
	case errors.As(err, &pushErr):
		return exitPush
	default:
		return exitUsage
	}
}
