package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"github.com/scarabhk/releasetools/pkg/env"
)

// DefaultPath is the configuration file looked up in the working directory
const DefaultPath = ".scarab-release.yaml"

// maxConfigSize bounds the configuration file read into memory
const maxConfigSize = 1024 * 1024

// Config represents the complete release tools configuration
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Bundle  BundleConfig  `yaml:"bundle"`
	Release ReleaseConfig `yaml:"release"`
}

// FeedConfig describes the update feed written by make-appcast.
// ItemTitle, ReleaseNotesURL and DownloadURL are text/template strings
// evaluated with {{.Version}}.
type FeedConfig struct {
	Title           string `yaml:"title"`
	Link            string `yaml:"link"`
	Language        string `yaml:"language"`
	ItemTitle       string `yaml:"item_title"`
	ReleaseNotesURL string `yaml:"release_notes_url"`
	DownloadURL     string `yaml:"download_url"`
	OS              string `yaml:"os"`
	Length          int64  `yaml:"length"`
	Type            string `yaml:"type"`
	Output          string `yaml:"output"`
}

// BundleConfig describes the .app layout handled by make-mac-app
type BundleConfig struct {
	Suffix        string            `yaml:"suffix"`
	Executable    string            `yaml:"executable"`
	ContentsDir   string            `yaml:"contents_dir"`
	ExecutableDir string            `yaml:"executable_dir"`
	Launcher      string            `yaml:"launcher"`
	Archive       string            `yaml:"archive"`
	Renames       map[string]string `yaml:"renames"`
}

// ReleaseConfig contains release hosting configuration
type ReleaseConfig struct {
	GitHub GitHubConfig `yaml:"github"`
}

// GitHubConfig contains GitHub-specific release configuration
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"`
	Draft bool   `yaml:"draft"`
}

// Load reads the configuration at path. When the file does not exist and
// required is false, the built-in defaults are returned. Fields missing from
// the file fall back to their defaults.
func Load(path string, required bool) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := readConfigFile(filepath.Clean(path))
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, fmt.Errorf("failed to parse config: empty document")
	}

	if err := env.ExpandNode(file.Docs[0].Body); err != nil {
		return nil, fmt.Errorf("environment variable substitution failed: %w", err)
	}

	var cfg Config
	if err := yaml.NodeToValue(file.Docs[0].Body, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config path %s is not a regular file", path)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: maximum size is 1MB")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}
