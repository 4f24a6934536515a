package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName    = "mr-monitor"
	envPrefix  = "MR_MONITOR"
	configName = "config"

	defaultGitLabURL      = "https://gitlab.com"
	defaultTargetBranch   = "main"
	defaultFormat         = "slack"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 30 * time.Second
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration.
// Values come from flags, MR_MONITOR_* environment variables, a YAML config
// file and defaults, in that order of precedence.
type Config struct {
	// GitLab configuration
	GitLabURL string
	APIToken  string
	ProjectID int64

	// Merge requests opened by these user ids are reported.
	AuthorIDs    []int64
	TargetBranch string

	Format         string
	LogLevel       string
	MaxConcurrency int // 0 means one approvals request per merge request at once
	RequestTimeout time.Duration

	// ConfigFile is the file that was read, empty if none was found.
	ConfigFile string
}

// Load parses args (without the program name) and resolves configuration.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to a YAML config file")
	fs.String("gitlab-url", defaultGitLabURL, "GitLab instance URL")
	fs.String("api-token", "", "GitLab API token")
	fs.Int64("project-id", 0, "GitLab project id")
	fs.String("author-ids", "", "comma-separated GitLab user ids to report on")
	fs.StringP("branch", "b", defaultTargetBranch, "target branch of the merge requests")
	fs.StringP("format", "f", defaultFormat, "report format: slack, text or yaml")
	fs.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	fs.Int("max-concurrency", 0, "cap on concurrent approvals requests (0 = unbounded)")
	fs.Duration("request-timeout", defaultRequestTimeout, "timeout for a single API request")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("gitlab_url", defaultGitLabURL)
	v.SetDefault("target_branch", defaultTargetBranch)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("max_concurrency", 0)
	v.SetDefault("request_timeout", defaultRequestTimeout)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{"api_token", "project_id", "author_ids"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	flagKeys := map[string]string{
		"gitlab-url":      "gitlab_url",
		"api-token":       "api_token",
		"project-id":      "project_id",
		"author-ids":      "author_ids",
		"branch":          "target_branch",
		"format":          "format",
		"log-level":       "log_level",
		"max-concurrency": "max_concurrency",
		"request-timeout": "request_timeout",
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	configFile, err := readConfigFile(v, *configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile reads path, or the default location when path is empty.
// A missing default file is not an error.
func readConfigFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(dir, appName))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}

	return v.ConfigFileUsed(), nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	projectID, err := cast.ToInt64E(v.Get("project_id"))
	if err != nil {
		return nil, fmt.Errorf("%w: project_id: %w", ErrInvalid, err)
	}

	authorIDs, err := parseAuthorIDs(v.Get("author_ids"))
	if err != nil {
		return nil, fmt.Errorf("%w: author_ids: %w", ErrInvalid, err)
	}

	maxConcurrency, err := cast.ToIntE(v.Get("max_concurrency"))
	if err != nil {
		return nil, fmt.Errorf("%w: max_concurrency: %w", ErrInvalid, err)
	}

	timeout, err := cast.ToDurationE(v.Get("request_timeout"))
	if err != nil {
		return nil, fmt.Errorf("%w: request_timeout: %w", ErrInvalid, err)
	}

	return &Config{
		GitLabURL:      strings.TrimSpace(v.GetString("gitlab_url")),
		APIToken:       strings.TrimSpace(v.GetString("api_token")),
		ProjectID:      projectID,
		AuthorIDs:      authorIDs,
		TargetBranch:   strings.TrimSpace(v.GetString("target_branch")),
		Format:         strings.ToLower(strings.TrimSpace(v.GetString("format"))),
		LogLevel:       v.GetString("log_level"),
		MaxConcurrency: maxConcurrency,
		RequestTimeout: timeout,
	}, nil
}

// parseAuthorIDs accepts a YAML list or a comma-separated string.
func parseAuthorIDs(raw any) ([]int64, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				items = append(items, part)
			}
		}
	default:
		var err error
		items, err = cast.ToSliceE(v)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := cast.ToInt64E(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate reports missing or out of range settings.
func (c *Config) Validate() error {
	var errs []error

	if c.GitLabURL == "" {
		errs = append(errs, errors.New("gitlab_url is required"))
	}
	if c.APIToken == "" {
		errs = append(errs, errors.New("api_token is required"))
	}
	if c.ProjectID <= 0 {
		errs = append(errs, errors.New("project_id must be a positive integer"))
	}
	if len(c.AuthorIDs) == 0 {
		errs = append(errs, errors.New("author_ids must list at least one user id"))
	}
	if c.TargetBranch == "" {
		errs = append(errs, errors.New("target_branch is required"))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, errors.New("max_concurrency must not be negative"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
