package classify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ademuri/lyrics-tools/internal/ollama"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

// DefaultProfile is the profile used when none is selected.
const DefaultProfile = "v5-nivel"

// Schema selects how a profile grades a song.
type Schema string

const (
	// SchemaLevel grades with one of the six toxicity levels.
	SchemaLevel Schema = "level"
	// SchemaScore grades with a float between 0 and 1.
	SchemaScore Schema = "score"
)

const maxFlags = 5

// Profile is a versioned prompt and response schema for the classifier.
type Profile struct {
	Name   string   `yaml:"name"`
	Model  string   `yaml:"model"`
	Schema Schema   `yaml:"schema"`
	Flags  []string `yaml:"flags"`
	Prompt string   `yaml:"prompt"`

	Options ollama.Options `yaml:"options"`

	// MaxLyricChars truncates lyrics before they are sent; zero sends them
	// whole.
	MaxLyricChars int `yaml:"max_lyric_chars"`
	MaxExamples   int `yaml:"max_examples"`
	ExampleChars  int `yaml:"example_chars"`

	MaxAttempts     int  `yaml:"max_attempts"`
	CheckpointEvery int  `yaml:"checkpoint_every"`
	RequireValid    bool `yaml:"validate"`
}

// ProfileNames lists the built-in profiles.
func ProfileNames() []string {
	entries, err := builtinProfiles.ReadDir("profiles")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadProfile returns the built-in profile called name.
func LoadProfile(name string) (*Profile, error) {
	data, err := builtinProfiles.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return parseProfile(data)
}

// LoadProfileFile reads a custom profile from a YAML file.
func LoadProfileFile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := parseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

func parseProfile(data []byte) (*Profile, error) {
	p := &Profile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the profile is usable.
func (p *Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("profile name is required"))
	}
	if strings.TrimSpace(p.Model) == "" {
		errs = append(errs, errors.New("profile model is required"))
	}
	if p.Schema != SchemaLevel && p.Schema != SchemaScore {
		errs = append(errs, fmt.Errorf("unknown schema %q, want %q or %q", p.Schema, SchemaLevel, SchemaScore))
	}
	if len(p.Flags) > maxFlags {
		errs = append(errs, fmt.Errorf("profile has %d flags, at most %d are allowed", len(p.Flags), maxFlags))
	}
	seen := map[string]bool{}
	for _, f := range p.Flags {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, errors.New("flag names must not be empty"))
			continue
		}
		if strings.Contains(f, ",") {
			errs = append(errs, fmt.Errorf("flag %q must not contain a comma", f))
		}
		if seen[f] {
			errs = append(errs, fmt.Errorf("duplicate flag %q", f))
		}
		seen[f] = true
	}
	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", p.MaxAttempts))
	}
	if p.CheckpointEvery < 0 || p.MaxLyricChars < 0 || p.MaxExamples < 0 || p.ExampleChars < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	return errors.Join(errs...)
}

// ValueColumn is the output column holding the grade.
func (p *Profile) ValueColumn() string {
	if p.Schema == SchemaScore {
		return "score"
	}
	return "nivel_toxicidade"
}
