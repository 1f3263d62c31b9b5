package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-tasks/pkg/config"
)

// ErrExists is returned by WriteFile when the target exists and force is off.
var ErrExists = errors.New("config file already exists")

type fileConfig struct {
	Root            string   `yaml:"root"`
	Scope           string   `yaml:"scope"`
	PriorityTags    []string `yaml:"priority_tags"`
	SnoozeTags      []string `yaml:"snooze_tags"`
	FocusTag        string   `yaml:"focus_tag"`
	DoneTag         string   `yaml:"done_tag"`
	CompletedLog    string   `yaml:"completed_log"`
	ExcludedFolders []string `yaml:"excluded_folders"`
	ProjectsFolder  string   `yaml:"projects_folder"`
	Debounce        string   `yaml:"debounce"`
	IndexDB         string   `yaml:"index_db"`
}

// Path returns the config file in effect: --config if given, otherwise
// $HOME/.config/tk/config.yaml.
func Path() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tk", "config.yaml"), nil
}

// WriteFile saves cfg as YAML at path.
func WriteFile(path string, cfg *config.Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}

	fc := fileConfig{
		Root:            cfg.Root,
		Scope:           cfg.Scope,
		PriorityTags:    cfg.PriorityTags,
		SnoozeTags:      cfg.SnoozeTags,
		FocusTag:        cfg.FocusTag,
		DoneTag:         cfg.DoneTag,
		CompletedLog:    cfg.CompletedLog,
		ExcludedFolders: cfg.ExcludedFolders,
		ProjectsFolder:  cfg.ProjectsFolder,
		Debounce:        cfg.Debounce.String(),
		IndexDB:         cfg.IndexDB,
	}
	if fc.ExcludedFolders == nil {
		fc.ExcludedFolders = []string{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
