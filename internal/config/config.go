// Package config loads and validates the blogbuilder configuration: YAML
// file, .env, and environment overrides, merged with CLI flags by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Config is the full build configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Sources []string      `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Share   []string      `yaml:"share"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig carries global site metadata embedded in the artifact.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// OutputConfig controls where and how the artifact is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// FallbackDate, when set (YYYY-MM-DD), replaces file modification time
	// as the date source for posts with no date of their own. Fixing it
	// makes builds byte-reproducible.
	FallbackDate string `yaml:"fallback_date"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Environment override variables. Flags beat env, env beats file.
const (
	EnvTitle       = "BLOGBUILDER_TITLE"
	EnvDescription = "BLOGBUILDER_DESCRIPTION"
	EnvOutput      = "BLOGBUILDER_OUTPUT"
)

// Load reads the configuration file (if it exists), loads a .env file when
// present, and applies environment overrides. A missing config file is not
// an error; defaults apply.
func Load(path string) (*Config, error) {
	// .env is optional; ignore absence.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// keep defaults
	case err != nil:
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "cannot read configuration file").
			WithContext("path", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "cannot parse configuration file").
				WithContext("path", path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Title: "My Blog",
		},
		Output: OutputConfig{
			Directory: "./site",
		},
		Logging: LoggingConfig{
			Level:  string(LogLevelInfo),
			Format: string(LogFormatText),
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvTitle); v != "" {
		cfg.Site.Title = v
	}
	if v := os.Getenv(EnvDescription); v != "" {
		cfg.Site.Description = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output.Directory = v
	}
}

// Validate checks cross-field constraints that cannot wait until build time.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return errors.FatalError(errors.CategoryConfig, "site title must not be empty")
	}
	if c.Output.Directory == "" {
		return errors.FatalError(errors.CategoryConfig, "output directory must not be empty")
	}
	if c.Output.FallbackDate != "" {
		if _, err := time.Parse("2006-01-02", c.Output.FallbackDate); err != nil {
			return errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "fallback_date must be YYYY-MM-DD").
				WithContext("value", c.Output.FallbackDate)
		}
	}
	return nil
}

// FallbackDate returns the parsed fixed date source, zero when unset.
func (c *Config) FallbackDate() time.Time {
	if c.Output.FallbackDate == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", c.Output.FallbackDate)
	if err != nil {
		return time.Time{}
	}
	return d
}

const starterConfig = `# blogbuilder configuration
site:
  title: "My Blog"
  description: ""

# Input roots: local directories or git URLs (cloned per build).
sources:
  - ./posts

output:
  directory: ./site
  # fallback_date: "2024-01-01"   # fix for byte-reproducible builds

# Share providers, Name:URLTemplate with {URL} {TITLE} {TEXT} {TAGS}.
share: []
#  - "X:https://x.com/intent/post?url={URL}&text={TITLE}"

logging:
  level: info
  format: text
`

// Init writes a starter configuration file. Existing files are preserved
// unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.FatalError(errors.CategoryConfig,
				fmt.Sprintf("configuration file %s already exists (use --force to overwrite)", path))
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot write configuration file").
			WithContext("path", path)
	}
	return nil
}
