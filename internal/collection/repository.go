package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 50 * time.Millisecond
)

var (
	ErrStoreRequired         = errors.New("collection: file store is required")
	ErrPathRequired          = errors.New("collection: file path is required")
	ErrIDHandlerRequired     = errors.New("collection: ID handler is required")
	ErrAuthorizationRequired = errors.New("collection: write authorization is required")
	ErrPublishedAtRequired   = errors.New("collection: new documents must carry a publication timestamp")
)

// NotFoundError is returned when a document lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a document-level lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Handlers describes how the generic repository manipulates documents.
type Handlers[T any] struct {
	// Resource names the document kind for error messages ("post", "bundle").
	Resource string
	// ID extracts the stable document identifier.
	ID func(doc T) string
	// Less orders the encoded collection; newest-first for blog posts.
	Less func(a, b T) bool
	// Touch stamps the mutation time onto the document.
	Touch func(doc T, now time.Time) T
	// PublishedAt reports the publication timestamp; required (non-zero) when
	// a save appends rather than replaces.
	PublishedAt func(doc T) time.Time
	// Check, when set, validates doc against the freshly loaded collection
	// before a save mutation is applied. It runs on every retry attempt, so
	// cross-document invariants (slug uniqueness) hold under races too.
	Check func(docs []T, doc T) error
}

// RetryConfig bounds the conflict retry cycle. Zero values fall back to the
// defaults (3 attempts, 50ms linear backoff).
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// Option configures a Repository.
type Option[T any] func(*Repository[T])

// WithRetry overrides the conflict retry policy.
func WithRetry[T any](retry RetryConfig) Option[T] {
	return func(r *Repository[T]) {
		if retry.Attempts > 0 {
			r.attempts = retry.Attempts
		}
		if retry.Backoff > 0 {
			r.backoff = retry.Backoff
		}
	}
}

// WithLogger attaches a logger to the repository.
func WithLogger[T any](logger interfaces.Logger) Option[T] {
	return func(r *Repository[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source used for mutation stamps.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(r *Repository[T]) {
		if now != nil {
			r.now = now
		}
	}
}

// Repository implements the whole-collection read-modify-write cycle over a
// versioned file store. Every mutation fetches the current collection,
// applies a single document change in memory, re-encodes the full sequence
// and writes it back guarded by the integrity token from the fetch. There is
// no in-process locking: the store's token check is the only concurrency
// authority, and a Conflict answer restarts the whole cycle against fresh
// state up to the configured retry bound.
type Repository[T any] struct {
	store    interfaces.FileStore
	path     string
	codec    Codec[T]
	handlers Handlers[T]

	attempts int
	backoff  time.Duration
	now      func() time.Time
	logger   interfaces.Logger
}

// NewRepository constructs a collection repository for the file at path.
func NewRepository[T any](store interfaces.FileStore, path string, handlers Handlers[T], opts ...Option[T]) (*Repository[T], error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if path == "" {
		return nil, ErrPathRequired
	}
	if handlers.ID == nil {
		return nil, ErrIDHandlerRequired
	}
	if handlers.Resource == "" {
		handlers.Resource = "document"
	}

	repo := &Repository[T]{
		store:    store,
		path:     path,
		codec:    NewCodec(handlers.Less),
		handlers: handlers,
		attempts: defaultRetryAttempts,
		backoff:  defaultRetryBackoff,
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// Path reports the logical store path this repository owns.
func (r *Repository[T]) Path() string {
	return r.path
}

// List returns every document in stored order (newest first once written
// through this repository). An absent file is an empty collection.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	docs, _, err := r.load(ctx)
	return docs, err
}

// GetByID returns the document carrying id, or a NotFoundError.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	docs, _, err := r.load(ctx)
	if err != nil {
		return zero, err
	}
	for _, doc := range docs {
		if r.handlers.ID(doc) == id {
			return doc, nil
		}
	}
	return zero, &NotFoundError{Resource: r.handlers.Resource, Key: id}
}

// Find returns the first document matching the predicate in collection
// order, or a NotFoundError keyed by the supplied description.
func (r *Repository[T]) Find(ctx context.Context, key string, match func(T) bool) (T, error) {
	var zero T
	docs, _, err := r.load(ctx)
	if err != nil {
		return zero, err
	}
	for _, doc := range docs {
		if match(doc) {
			return doc, nil
		}
	}
	return zero, &NotFoundError{Resource: r.handlers.Resource, Key: key}
}

// Save upserts doc: replaced in place when the id already exists, appended
// otherwise. Appends require a preset publication timestamp; the mutation
// stamp is refreshed on every save. The write is conditional on the token
// from the read that opened the cycle and retries on conflict.
func (r *Repository[T]) Save(ctx context.Context, doc T, auth interfaces.WriteAuthorization, message string) (T, error) {
	var saved T
	err := r.update(ctx, auth, message, func(docs []T) ([]T, bool, error) {
		if r.handlers.Check != nil {
			if err := r.handlers.Check(docs, doc); err != nil {
				return nil, false, err
			}
		}

		id := r.handlers.ID(doc)
		stamped := doc
		if r.handlers.Touch != nil {
			stamped = r.handlers.Touch(doc, r.now().UTC())
		}

		for i, existing := range docs {
			if r.handlers.ID(existing) == id {
				docs[i] = stamped
				saved = stamped
				return docs, true, nil
			}
		}

		if r.handlers.PublishedAt != nil && r.handlers.PublishedAt(stamped).IsZero() {
			return nil, false, ErrPublishedAtRequired
		}
		saved = stamped
		return append(docs, stamped), true, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return saved, nil
}

// Delete filters the document out of the collection. Deleting an id that is
// not present is a no-op success and leaves the store untouched.
func (r *Repository[T]) Delete(ctx context.Context, id string, auth interfaces.WriteAuthorization, message string) error {
	return r.update(ctx, auth, message, func(docs []T) ([]T, bool, error) {
		kept := docs[:0]
		removed := false
		for _, doc := range docs {
			if r.handlers.ID(doc) == id {
				removed = true
				continue
			}
			kept = append(kept, doc)
		}
		return kept, removed, nil
	})
}

// update runs one full fetch/mutate/encode/conditional-write cycle, retrying
// on store conflicts. The mutation callback receives the freshly decoded
// collection on every attempt so concurrent editors never clobber each
// other's unrelated documents; it returns the new sequence and whether
// anything changed (an unchanged collection skips the write entirely).
func (r *Repository[T]) update(ctx context.Context, auth interfaces.WriteAuthorization, message string, mutate func([]T) ([]T, bool, error)) error {
	if !auth.Valid() {
		return ErrAuthorizationRequired
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		docs, token, err := r.load(ctx)
		if err != nil {
			return err
		}

		mutated, changed, err := mutate(docs)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		encoded, err := r.codec.Encode(mutated)
		if err != nil {
			return err
		}

		_, err = r.store.Write(ctx, r.path, encoded, interfaces.WriteOptions{
			Token:     token,
			Message:   message,
			Committer: auth.Committer,
		})
		if err == nil {
			return nil
		}
		if !gitstore.IsConflict(err) && !gitstore.IsAlreadyExists(err) {
			return err
		}

		lastErr = err
		r.logger.Warn("collection.write.conflict",
			"path", r.path,
			"attempt", attempt,
			"attempts", r.attempts,
		)

		if attempt < r.attempts && r.backoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * r.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return goerrors.Wrap(lastErr, goerrors.CategoryConflict,
		fmt.Sprintf("collection: write to %q lost %d consecutive races", r.path, r.attempts)).
		WithTextCode(textCodeWriteConflict)
}

func (r *Repository[T]) load(ctx context.Context) ([]T, string, error) {
	file, err := r.store.Read(ctx, r.path)
	if err != nil {
		if gitstore.IsNotFound(err) {
			// No prior version: the collection is legitimately empty and the
			// next write must create the path fresh.
			return nil, "", nil
		}
		return nil, "", err
	}

	docs, err := r.codec.Decode(file.Content)
	if err != nil {
		return nil, "", err
	}
	return docs, file.Token, nil
}
