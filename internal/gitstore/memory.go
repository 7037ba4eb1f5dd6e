package gitstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// MemoryStore is an in-memory implementation of interfaces.FileStore for
// scaffolding and tests. Tokens are content digests, so the compare-and-swap
// behaviour matches the remote store: rewriting identical bytes keeps the
// token stable, any content change rotates it.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// BeforeWrite, when set, runs inside the write critical section before
	// the token check. Tests use it to interleave a racing writer.
	BeforeWrite func(path string)

	writes int
}

var _ interfaces.FileStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Seed installs content without the write contract (no message, no token
// check). Intended for test fixture setup only.
func (m *MemoryStore) Seed(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), content...)
}

// Writes reports how many successful writes the store has accepted.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Read returns the current content and token for path.
func (m *MemoryStore) Read(_ context.Context, path string) (interfaces.File, error) {
	if strings.TrimSpace(path) == "" {
		return interfaces.File{}, ErrPathRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.files[path]
	if !ok {
		return interfaces.File{}, notFoundError(path)
	}

	return interfaces.File{
		Path:    path,
		Content: append([]byte(nil), content...),
		Token:   digest(content),
	}, nil
}

// Write applies the conditional-write contract: a non-empty token must match
// the current content digest, an empty token requires the path to be absent.
func (m *MemoryStore) Write(_ context.Context, path string, content []byte, opts interfaces.WriteOptions) (interfaces.File, error) {
	if strings.TrimSpace(path) == "" {
		return interfaces.File{}, ErrPathRequired
	}
	if strings.TrimSpace(opts.Message) == "" {
		return interfaces.File{}, ErrMessageRequired
	}
	if strings.TrimSpace(opts.Committer.Name) == "" || strings.TrimSpace(opts.Committer.Email) == "" {
		return interfaces.File{}, ErrCommitterRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.BeforeWrite != nil {
		hook := m.BeforeWrite
		m.BeforeWrite = nil
		hook(path)
	}

	current, exists := m.files[path]
	if opts.Token == "" {
		if exists {
			return interfaces.File{}, alreadyExistsError(path)
		}
	} else {
		if !exists || digest(current) != opts.Token {
			return interfaces.File{}, conflictError(path)
		}
	}

	m.files[path] = append([]byte(nil), content...)
	m.writes++

	return interfaces.File{
		Path:    path,
		Content: append([]byte(nil), content...),
		Token:   digest(content),
	}, nil
}

// apply mutates a path in place, bypassing the write contract. Used by the
// BeforeWrite hook to simulate a concurrent editor landing first.
func (m *MemoryStore) apply(path string, mutate func([]byte) []byte) {
	m.files[path] = mutate(append([]byte(nil), m.files[path]...))
	m.writes++
}

// ApplyRacingWrite mutates path as if another editor committed between the
// caller's read and write. Safe to call from a BeforeWrite hook (already
// inside the critical section) only.
func (m *MemoryStore) ApplyRacingWrite(path string, mutate func([]byte) []byte) {
	m.apply(path, mutate)
}

func digest(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}
