package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"feedsift/internal/domain/entity"
	pkgconfig "feedsift/internal/pkg/config"
	envconfig "feedsift/pkg/config"
)

// DefaultSourcesPath is used when FEEDSIFT_SOURCES is not set.
const DefaultSourcesPath = "config/sources.yaml"

// DefaultItemLimit caps items per feed when neither the source nor the
// defaults block sets one.
const DefaultItemLimit = 10

// ErrUnknownGroup is returned when a source references an undeclared group.
var ErrUnknownGroup = errors.New("unknown processing group")

// SourcesFile is the static feed configuration.
//
//	defaults:
//	  item_limit: 10
//	  detail_timeout: 15s
//	groups:
//	  - name: morning
//	    schedule: "30 5 * * *"
//	sources:
//	  - name: Example Wire
//	    url: https://example.com/feed.xml
//	    format: rss
//	    groups: [morning]
//	    detail_page:
//	      enabled: true
//	      selectors: ["article .content", "#main"]
//	      exclude: [".related", ".ad"]
type SourcesFile struct {
	Defaults SourceDefaults      `yaml:"defaults"`
	Groups   []GroupConfig       `yaml:"groups"`
	Sources  []entity.FeedSource `yaml:"sources"`
}

// SourceDefaults apply to every source that does not override them.
type SourceDefaults struct {
	ItemLimit     int           `yaml:"item_limit"`
	DetailTimeout time.Duration `yaml:"detail_timeout"`
}

// GroupConfig declares a processing group and, optionally, the cron
// schedule the worker runs it on. Groups without a schedule are only run
// on demand.
type GroupConfig struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule,omitempty"`
}

// SourcesPath returns the configured sources file path.
func SourcesPath() string {
	return envconfig.GetEnvString("FEEDSIFT_SOURCES", DefaultSourcesPath)
}

// LoadSources reads and validates the sources file at path.
func LoadSources(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	sf, err := ParseSources(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// ParseSources decodes and validates a sources document.
func ParseSources(data []byte) (*SourcesFile, error) {
	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Validate checks every group and source. Sources are normalised in place.
// A group referenced by a source but not declared is added implicitly
// without a schedule, so small configs can skip the groups block.
func (f *SourcesFile) Validate() error {
	if f.Defaults.ItemLimit < 0 {
		return entity.Invalid("defaults.item_limit", "must not be negative")
	}
	if f.Defaults.DetailTimeout < 0 {
		return entity.Invalid("defaults.detail_timeout", "must not be negative")
	}

	declared := make(map[string]bool, len(f.Groups))
	for i, g := range f.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return entity.Invalid(fmt.Sprintf("groups[%d].name", i), "is required")
		}
		if declared[name] {
			return entity.Invalid(fmt.Sprintf("groups[%d].name", i), "duplicate group %q", name)
		}
		if g.Schedule != "" {
			if err := pkgconfig.ValidateCronSchedule(g.Schedule); err != nil {
				return entity.Invalid(fmt.Sprintf("groups[%d].schedule", i), "%v", err)
			}
		}
		f.Groups[i].Name = name
		declared[name] = true
	}

	names := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		src := &f.Sources[i]
		if err := src.Validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: %w", i, entity.Invalid("name", "duplicate source %q", src.Name))
		}
		names[src.Name] = true

		for _, g := range src.Groups {
			if !declared[g] {
				declared[g] = true
				f.Groups = append(f.Groups, GroupConfig{Name: g})
			}
		}
		if src.DetailPage != nil && src.DetailPage.Timeout == 0 {
			src.DetailPage.Timeout = f.Defaults.DetailTimeout
		}
	}
	return nil
}

// ItemLimit returns the item cap for sources that set none. The sources file
// defaults block wins over fallback (PIPELINE_DEFAULT_ITEM_LIMIT), which wins
// over DefaultItemLimit. A nil file is valid.
func (f *SourcesFile) ItemLimit(fallback int) int {
	if f != nil && f.Defaults.ItemLimit > 0 {
		return f.Defaults.ItemLimit
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultItemLimit
}

// SourcesForGroup returns, in configuration order, the sources that belong
// to group.
func (f *SourcesFile) SourcesForGroup(group string) []entity.FeedSource {
	var out []entity.FeedSource
	for _, s := range f.Sources {
		if s.InGroup(group) {
			out = append(out, s)
		}
	}
	return out
}

// Group looks up a declared group.
func (f *SourcesFile) Group(name string) (GroupConfig, error) {
	for _, g := range f.Groups {
		if g.Name == name {
			return g, nil
		}
	}
	return GroupConfig{}, fmt.Errorf("%w: %s", ErrUnknownGroup, name)
}

// GroupNames lists the group names in declaration order.
func (f *SourcesFile) GroupNames() []string {
	out := make([]string, 0, len(f.Groups))
	for _, g := range f.Groups {
		out = append(out, g.Name)
	}
	return out
}
