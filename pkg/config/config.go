package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/commit-tagger/pkg/tagger"
	"github.com/commit-tagger/pkg/vcs"
)

const (
	BackendCLI   = "cli"
	BackendGoGit = "go-git"
)

type Config struct {
	Owner     string        `yaml:"owner" env:"TAGGER_OWNER"`
	Repo      string        `yaml:"repo" env:"TAGGER_REPO"`
	Branch    string        `yaml:"branch" env:"TAGGER_BRANCH"`
	Remote    string        `yaml:"remote" env:"TAGGER_REMOTE"`
	TagPolicy string        `yaml:"tag_policy" env:"TAGGER_TAG_POLICY"`
	Backend   string        `yaml:"backend" env:"TAGGER_BACKEND"`
	Dir       string        `yaml:"dir"`
	APIURL    string        `yaml:"api_url" env:"GITHUB_API_URL"`
	Timeout   time.Duration `yaml:"timeout"`
	Token     string        `yaml:"-" env:"GITHUB_TOKEN"`
	DryRun    bool          `yaml:"-"`
	Output    string        `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Owner:     "ealvar3z",
		Repo:      "ttv",
		Branch:    "main",
		Remote:    "origin",
		TagPolicy: string(tagger.PolicyShort),
		Backend:   BackendCLI,
		Dir:       ".",
		Timeout:   tagger.DefaultFetchTimeout,
		Output:    "table",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeEnv overlays variables that are set in the environment.
func MergeEnv(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// MergeFlags overlays flags the user set explicitly; flag defaults never
// override file or environment values.
func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if flags.Changed("repo") {
		if v, err := flags.GetString("repo"); err == nil && v != "" {
			if owner, repo, err := vcs.ParseGitHubRepo(v); err == nil {
				cfg.Owner, cfg.Repo = owner, repo
			} else {
				cfg.Repo = v
			}
		}
	}
	if flags.Changed("owner") {
		if v, err := flags.GetString("owner"); err == nil && v != "" {
			cfg.Owner = v
		}
	}
	if v, err := flags.GetString("branch"); err == nil && flags.Changed("branch") {
		cfg.Branch = v
	}
	if v, err := flags.GetString("remote"); err == nil && flags.Changed("remote") {
		cfg.Remote = v
	}
	if v, err := flags.GetString("tag-policy"); err == nil && flags.Changed("tag-policy") {
		cfg.TagPolicy = v
	}
	if v, err := flags.GetString("backend"); err == nil && flags.Changed("backend") {
		cfg.Backend = v
	}
	if v, err := flags.GetString("dir"); err == nil && flags.Changed("dir") {
		cfg.Dir = v
	}
	if v, err := flags.GetString("api-url"); err == nil && flags.Changed("api-url") {
		cfg.APIURL = v
	}
	if v, err := flags.GetString("github-token"); err == nil && flags.Changed("github-token") {
		cfg.Token = v
	}
	if v, err := flags.GetDuration("timeout"); err == nil && flags.Changed("timeout") {
		cfg.Timeout = v
	}
	if v, err := flags.GetBool("dry-run"); err == nil && flags.Changed("dry-run") {
		cfg.DryRun = v
	}
	if v, err := flags.GetString("output"); err == nil && flags.Changed("output") {
		cfg.Output = v
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("repository owner and name are required")
	}
	if c.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if c.Remote == "" {
		return fmt.Errorf("remote is required")
	}
	if _, err := tagger.ParsePolicy(c.TagPolicy); err != nil {
		return err
	}
	switch c.Backend {
	case BackendCLI, BackendGoGit:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendCLI, BackendGoGit)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", c.Output)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// TaggerOptions converts a validated config.
func (c *Config) TaggerOptions() tagger.Options {
	return tagger.Options{
		Owner:        c.Owner,
		Repo:         c.Repo,
		Branch:       c.Branch,
		Remote:       c.Remote,
		Policy:       tagger.Policy(c.TagPolicy),
		FetchTimeout: c.Timeout,
		DryRun:       c.DryRun,
	}
}
