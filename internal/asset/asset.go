// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package asset describes a buildable asset: a named directory that build commands run in.
package asset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyName is returned when an asset has no name.
	ErrEmptyName = errors.New("asset name is empty")
	// ErrEmptyPath is returned when an asset has no path.
	ErrEmptyPath = errors.New("asset path is empty")
)

// Asset is identified by its name and built inside its path.
type Asset struct {
	name string
	path string
}

// New creates an Asset. The path is cleaned but not resolved.
func New(name, path string) (*Asset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPath, name)
	}

	return &Asset{name: name, path: filepath.Clean(path)}, nil
}

// Name returns the display name.
func (a *Asset) Name() string {
	return a.name
}

// Path returns the working directory.
func (a *Asset) Path() string {
	return a.path
}

// WithBase returns a copy whose relative path is joined onto base.
// Absolute paths are kept.
func (a *Asset) WithBase(base string) *Asset {
	if filepath.IsAbs(a.path) || base == "" {
		c := *a
		return &c
	}

	return &Asset{name: a.name, path: filepath.Join(base, a.path)}
}

func (a *Asset) String() string {
	return a.name + " (" + a.path + ")"
}
