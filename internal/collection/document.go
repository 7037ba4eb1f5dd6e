package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// DocumentRepository persists a single JSON document (site metadata, a
// translation bundle) at a fixed store path under the same token-guarded
// write cycle as collections. Put always replaces the whole document; there
// is no partial update.
type DocumentRepository[T any] struct {
	store interfaces.FileStore
	path  string

	attempts int
	backoff  time.Duration
	logger   interfaces.Logger
}

// DocumentOption configures a DocumentRepository.
type DocumentOption[T any] func(*DocumentRepository[T])

// WithDocumentRetry overrides the conflict retry policy.
func WithDocumentRetry[T any](retry RetryConfig) DocumentOption[T] {
	return func(r *DocumentRepository[T]) {
		if retry.Attempts > 0 {
			r.attempts = retry.Attempts
		}
		if retry.Backoff > 0 {
			r.backoff = retry.Backoff
		}
	}
}

// WithDocumentLogger attaches a logger.
func WithDocumentLogger[T any](logger interfaces.Logger) DocumentOption[T] {
	return func(r *DocumentRepository[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewDocumentRepository constructs a single-document repository for path.
func NewDocumentRepository[T any](store interfaces.FileStore, path string, opts ...DocumentOption[T]) (*DocumentRepository[T], error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if path == "" {
		return nil, ErrPathRequired
	}

	repo := &DocumentRepository[T]{
		store:    store,
		path:     path,
		attempts: defaultRetryAttempts,
		backoff:  defaultRetryBackoff,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// Get returns the stored document and whether it exists. An absent path is
// not an error: callers receive the zero value and exists=false.
func (r *DocumentRepository[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T

	file, err := r.store.Read(ctx, r.path)
	if err != nil {
		if gitstore.IsNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}

	trimmed := bytes.TrimSpace(file.Content)
	if len(trimmed) == 0 {
		return zero, false, nil
	}

	var doc T
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return zero, false, goerrors.Wrap(err, goerrors.CategoryInternal, "collection: stored document is corrupt").
			WithTextCode(textCodeCorrupt)
	}
	return doc, true, nil
}

// Put replaces the whole document, guarded by the token from a fresh read
// on every attempt, retrying on conflict like the collection cycle.
func (r *DocumentRepository[T]) Put(ctx context.Context, doc T, auth interfaces.WriteAuthorization, message string) error {
	if !auth.Valid() {
		return ErrAuthorizationRequired
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "collection: encode document failed").
			WithTextCode(textCodeCorrupt)
	}
	encoded = append(encoded, '\n')

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		token := ""
		if file, err := r.store.Read(ctx, r.path); err == nil {
			token = file.Token
		} else if !gitstore.IsNotFound(err) {
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
		r.logger.Warn("document.write.conflict", "path", r.path, "attempt", attempt)

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
