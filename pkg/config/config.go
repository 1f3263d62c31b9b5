package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings shared by the scanner, processor and aggregator.
type Config struct {
	// Root is the content root directory of the document store.
	Root string `mapstructure:"root"`
	// Scope is the sub-path of Root that a full scan enumerates.
	Scope string `mapstructure:"scope"`

	// PriorityTags is the ordered, mutually exclusive set of priority tags.
	PriorityTags []string `mapstructure:"priority_tags"`
	// SnoozeTags is the "defer" family. They rank last and are mutually
	// exclusive with PriorityTags.
	SnoozeTags []string `mapstructure:"snooze_tags"`
	FocusTag   string   `mapstructure:"focus_tag"`
	DoneTag    string   `mapstructure:"done_tag"`

	// CompletedLog is the document completed items are logged to. Empty disables logging.
	CompletedLog string `mapstructure:"completed_log"`

	ExcludedFolders []string `mapstructure:"excluded_folders"`
	ProjectsFolder  string   `mapstructure:"projects_folder"`

	Debounce time.Duration `mapstructure:"debounce"`
	IndexDB  string        `mapstructure:"index_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PriorityTags:   []string{"#focus", "#urgent", "#p0", "#p1", "#p2", "#p3", "#p4"},
		SnoozeTags:     []string{"#snooze", "#snoozed", "#someday"},
		FocusTag:       "#focus",
		DoneTag:        "#done",
		ProjectsFolder: "projects",
		Debounce:       100 * time.Millisecond,
		IndexDB:        ":memory:",
	}
}

// Validate normalizes tag spellings and checks required fields.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}
	c.PriorityTags = normalizeTags(c.PriorityTags)
	c.SnoozeTags = normalizeTags(c.SnoozeTags)
	c.FocusTag = normalizeTag(c.FocusTag)
	c.DoneTag = normalizeTag(c.DoneTag)

	if c.DoneTag == "" {
		return fmt.Errorf("%w: done_tag is required", ErrInvalid)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalid)
	}
	for i, f := range c.ExcludedFolders {
		c.ExcludedFolders[i] = strings.Trim(path.Clean("/"+f), "/")
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.PriorityTags = append([]string(nil), c.PriorityTags...)
	cp.SnoozeTags = append([]string(nil), c.SnoozeTags...)
	cp.ExcludedFolders = append([]string(nil), c.ExcludedFolders...)
	return &cp
}

// IsExcluded reports whether docPath lies under one of the excluded folders.
func (c *Config) IsExcluded(docPath string) bool {
	p := strings.TrimPrefix(path.Clean("/"+docPath), "/")
	for _, f := range c.ExcludedFolders {
		if f == "" {
			continue
		}
		if p == f || strings.HasPrefix(p, f+"/") {
			return true
		}
	}
	return false
}

func normalizeTag(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if !strings.HasPrefix(t, "#") {
		t = "#" + t
	}
	return t
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = normalizeTag(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Source holds the active configuration. Components read it on every
// operation; Update replaces it without triggering any rescan.
type Source struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewSource wraps cfg, falling back to Default when cfg is nil.
func NewSource(cfg *Config) *Source {
	if cfg == nil {
		cfg = Default()
	}
	return &Source{cfg: cfg}
}

// Get returns the active configuration. Callers must not modify it.
func (s *Source) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update validates and installs cfg.
func (s *Source) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
