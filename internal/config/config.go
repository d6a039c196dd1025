// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads a batch definition: the assets to build and the scheduler settings.
// Definitions are written in YAML (.yaml, .yml) or HCL (.hcl).
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/parabuild/internal/asset"
	"github.com/matt-FFFFFF/parabuild/internal/parallel"
	"github.com/matt-FFFFFF/parabuild/internal/process"
	"github.com/spf13/afero"
)

var (
	// ErrReadConfig is returned when the definition file cannot be read.
	ErrReadConfig = errors.New("failed to read configuration file")
	// ErrParseConfig is returned when the definition file is not valid YAML or HCL.
	ErrParseConfig = errors.New("failed to parse configuration file")
	// ErrInvalidConfig wraps every validation problem found in a definition.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnsupportedFormat is returned for file extensions other than .yaml, .yml and .hcl.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	// ErrNoAssets is returned when a definition has no assets.
	ErrNoAssets = errors.New("no assets defined")
	// ErrDuplicateAsset is returned when two assets share a name.
	ErrDuplicateAsset = errors.New("duplicate asset name")
	// ErrNoCommands is returned when an asset has no commands.
	ErrNoCommands = errors.New("asset has no commands")
	// ErrEmptyCommand is returned when an asset has a blank command.
	ErrEmptyCommand = errors.New("asset command is empty")
	// ErrNegativeSetting is returned for negative numeric settings.
	ErrNegativeSetting = errors.New("setting must not be negative")
)

// Settings tunes the scheduler. Zero values select the scheduler defaults.
type Settings struct {
	MaxProcesses            int  `yaml:"max_processes,omitempty" hcl:"max_processes,optional" docdesc:"Maximum number of concurrent builds (default 4)"`
	PollIntervalMs          int  `yaml:"poll_interval_ms,omitempty" hcl:"poll_interval_ms,optional" docdesc:"Milliseconds between status checks, 5 to 2000 (default 100)"`
	TimeoutIncrementSeconds int  `yaml:"timeout_increment_seconds,omitempty" hcl:"timeout_increment_seconds,optional" docdesc:"Seconds of time budget per command, 30 to 3600 (default 300)"`
	StopOnFailure           bool `yaml:"stop_on_failure,omitempty" hcl:"stop_on_failure,optional" docdesc:"Stop the run after the first failed build"`
	ProcessTimeoutSeconds   int  `yaml:"process_timeout_seconds,omitempty" hcl:"process_timeout_seconds,optional" docdesc:"Seconds any single build may run (default 3600)"`
}

// AssetDefinition is one asset as written in the file.
type AssetDefinition struct {
	Name     string   `yaml:"name" docdesc:"Unique name of the asset"`
	Path     string   `yaml:"path" docdesc:"Directory the commands run in, relative to the definition file"`
	Commands []string `yaml:"commands" docdesc:"Shell commands run in order, each only if the previous one succeeded"`
}

// Definition is a validated batch.
type Definition struct {
	Settings Settings          `yaml:"settings,omitempty" docdesc:"Scheduler settings"`
	Assets   []AssetDefinition `yaml:"assets" docdesc:"Assets to build, started in this order"`

	baseDir string
}

// Load reads and validates the definition at path.
// Relative asset paths are resolved against the directory of path.
func Load(path string) (*Definition, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}

	return Parse(data, filepath.Base(path), base)
}

// Parse decodes data in the format given by the extension of filename and validates it.
// Relative asset paths are resolved against baseDir.
func Parse(data []byte, filename, baseDir string) (*Definition, error) {
	var (
		def *Definition
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		def, err = parseYAML(data)
	case ".hcl":
		def, err = parseHCL(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	def.baseDir = baseDir

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// Validate reports every problem in the definition at once.
func (d *Definition) Validate() error {
	var result error

	if len(d.Assets) == 0 {
		result = multierror.Append(result, ErrNoAssets)
	}

	seen := make(map[string]int, len(d.Assets))

	for i, a := range d.Assets {
		if _, err := asset.New(a.Name, a.Path); err != nil {
			result = multierror.Append(result, fmt.Errorf("asset %d: %w", i, err))
		}

		name := strings.TrimSpace(a.Name)
		if first, ok := seen[name]; ok && name != "" {
			result = multierror.Append(result, fmt.Errorf("asset %d: %w: %q is also asset %d", i, ErrDuplicateAsset, name, first))
		} else {
			seen[name] = i
		}

		if len(a.Commands) == 0 {
			result = multierror.Append(result, fmt.Errorf("asset %d: %w", i, ErrNoCommands))
		}

		for j, c := range a.Commands {
			if strings.TrimSpace(c) == "" {
				result = multierror.Append(result, fmt.Errorf("asset %d command %d: %w", i, j, ErrEmptyCommand))
			}
		}
	}

	for _, s := range []struct {
		name  string
		value int
	}{
		{"max_processes", d.Settings.MaxProcesses},
		{"poll_interval_ms", d.Settings.PollIntervalMs},
		{"timeout_increment_seconds", d.Settings.TimeoutIncrementSeconds},
		{"process_timeout_seconds", d.Settings.ProcessTimeoutSeconds},
	} {
		if s.value < 0 {
			result = multierror.Append(result, fmt.Errorf("%w: %s = %d", ErrNegativeSetting, s.name, s.value))
		}
	}

	if result != nil {
		return errors.Join(ErrInvalidConfig, result)
	}

	return nil
}

// BaseDir returns the directory relative asset paths are resolved against.
func (d *Definition) BaseDir() string {
	return d.baseDir
}

// Entry is an asset with its path resolved and the commands that build it.
type Entry struct {
	Asset    *asset.Asset
	Commands []string
}

// Entries returns the assets in file order.
// It must only be called on a validated definition.
func (d *Definition) Entries() []Entry {
	out := make([]Entry, 0, len(d.Assets))

	for _, a := range d.Assets {
		v, err := asset.New(a.Name, a.Path)
		if err != nil {
			continue
		}

		out = append(out, Entry{Asset: v.WithBase(d.baseDir), Commands: slices.Clone(a.Commands)})
	}

	return out
}

// Options converts the non-zero settings into scheduler options.
func (s Settings) Options() []parallel.Option {
	var opts []parallel.Option

	if s.MaxProcesses > 0 {
		opts = append(opts, parallel.WithMaxProcesses(s.MaxProcesses))
	}

	if s.PollIntervalMs > 0 {
		opts = append(opts, parallel.WithPollInterval(time.Duration(s.PollIntervalMs)*time.Millisecond))
	}

	if s.TimeoutIncrementSeconds > 0 {
		opts = append(opts, parallel.WithTimeoutIncrement(time.Duration(s.TimeoutIncrementSeconds)*time.Second))
	}

	return opts
}

// ProcessTimeout returns the per process ceiling.
func (s Settings) ProcessTimeout() time.Duration {
	if s.ProcessTimeoutSeconds <= 0 {
		return process.DefaultProcessTimeout
	}

	return time.Duration(s.ProcessTimeoutSeconds) * time.Second
}
