// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"slices"
	"strings"
	"sync"
)

// Chunk is one write to a Tee.
type Chunk struct {
	Tag  int
	Data []byte
}

// Spool queues chunks from one or more Tees until drained.
// It is safe for concurrent use.
type Spool struct {
	mu      sync.Mutex
	pending []Chunk
}

// NewSpool creates an empty Spool.
func NewSpool() *Spool {
	return &Spool{}
}

// Drain returns the queued chunks in arrival order and empties the queue.
func (s *Spool) Drain() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.pending
	s.pending = nil

	return out
}

// Len returns the number of queued chunks.
func (s *Spool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

func (s *Spool) push(c Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, c)
}

// Tee keeps up to limit bytes of what is written to it and forwards each write to its spool.
// Writes never fail; bytes past the limit are dropped from the kept copy but still spooled.
// It is safe for concurrent use.
type Tee struct {
	mu        sync.RWMutex
	tag       int
	limit     int
	spool     *Spool
	buf       bytes.Buffer
	truncated bool
}

// NewTee creates a Tee with the given tag. A nil spool keeps the copy only.
// A limit of zero or less keeps everything.
func NewTee(tag, limit int, spool *Spool) *Tee {
	return &Tee{tag: tag, limit: limit, spool: spool}
}

// Write implements io.Writer.
func (t *Tee) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	keep := p
	if t.limit > 0 {
		room := t.limit - t.buf.Len()
		if room < len(keep) {
			keep = keep[:max(room, 0)]
			t.truncated = true
		}
	}

	t.buf.Write(keep)

	if t.spool != nil {
		t.spool.push(Chunk{Tag: t.tag, Data: slices.Clone(p)})
	}

	return len(p), nil
}

// Bytes returns a copy of the kept output.
func (t *Tee) Bytes() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.buf.Bytes())
}

// String returns the kept output.
func (t *Tee) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.buf.String()
}

// Lines splits the kept output on newlines, dropping a trailing empty line.
func (t *Tee) Lines() []string {
	s := strings.TrimRight(t.String(), "\n")
	if s == "" {
		return nil
	}

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}

// Truncated reports whether output was dropped because of the limit.
func (t *Tee) Truncated() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.truncated
}
