package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides holds explicit field and flag overrides loaded from an optional
// YAML file. These take priority over everything else when seeding a Store.
// nexup only ever reads this file; it never writes configuration back.
type Overrides struct {
	Fields map[string]string `yaml:"fields,omitempty"`
	Flags  map[string]bool   `yaml:"flags,omitempty"`
}

// LoadOverrides parses a YAML overrides file. A missing path returns an
// empty Overrides rather than an error; a malformed file is an error.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return &Overrides{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}

	// Reject unknown keys up front so a typo in the file surfaces immediately
	// instead of silently seeding nothing.
	for key := range ov.Fields {
		if !knownField(key) {
			return nil, fmt.Errorf("overrides file references unknown field %q", key)
		}
	}
	for key := range ov.Flags {
		if !knownFlag(key) {
			return nil, fmt.Errorf("overrides file references unknown flag %q", key)
		}
	}

	return &ov, nil
}

// Store holds the current field values and boolean flags for one run.
// It is created once at startup and mutated only by the UI; the job runner
// takes a one-shot copy at start time via FieldValues/FlagValues.
type Store struct {
	fields map[string]string
	flags  map[string]bool
}

// NewStore seeds a Store. Each field takes, in priority order: an explicit
// override, the process environment, a detected value, the hardcoded
// default, else the empty string. Flags take an explicit override or their
// hardcoded default; they are not seeded from the environment.
func NewStore(ov *Overrides, detected map[string]string) *Store {
	if ov == nil {
		ov = &Overrides{}
	}

	s := &Store{
		fields: make(map[string]string, len(Fields)),
		flags:  make(map[string]bool, len(Flags)),
	}

	for _, f := range Fields {
		switch {
		case ov.Fields[f.Key] != "":
			s.fields[f.Key] = ov.Fields[f.Key]
		case os.Getenv(f.Key) != "":
			s.fields[f.Key] = os.Getenv(f.Key)
		case detected[f.Key] != "":
			s.fields[f.Key] = detected[f.Key]
		default:
			s.fields[f.Key] = f.Default
		}
	}

	for _, fl := range Flags {
		if v, ok := ov.Flags[fl.Key]; ok {
			s.flags[fl.Key] = v
		} else {
			s.flags[fl.Key] = fl.Default
		}
	}

	return s
}

// Get returns the current value of a field.
// Unknown keys are a programming error.
func (s *Store) Get(key string) string {
	v, ok := s.fields[key]
	if !ok {
		panic("config: unknown field key: " + key)
	}
	return v
}

// Set replaces the value of a field. An empty string is a valid "unset"
// value for non-mandatory fields.
func (s *Store) Set(key, value string) {
	if _, ok := s.fields[key]; !ok {
		panic("config: unknown field key: " + key)
	}
	s.fields[key] = value
}

// GetFlag returns the current value of a boolean flag.
func (s *Store) GetFlag(key string) bool {
	v, ok := s.flags[key]
	if !ok {
		panic("config: unknown flag key: " + key)
	}
	return v
}

// ToggleFlag inverts a boolean flag.
func (s *Store) ToggleFlag(key string) {
	if _, ok := s.flags[key]; !ok {
		panic("config: unknown flag key: " + key)
	}
	s.flags[key] = !s.flags[key]
}

// FieldValues returns a copy of all field values, including hidden fields.
func (s *Store) FieldValues() map[string]string {
	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// FlagValues returns a copy of all flag values.
func (s *Store) FlagValues() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

func knownField(key string) bool {
	for _, f := range Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func knownFlag(key string) bool {
	for _, f := range Flags {
		if f.Key == key {
			return true
		}
	}
	return false
}
