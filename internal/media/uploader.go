package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"

	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// DefaultDir is the directory inside the content repository that receives
// uploaded assets.
const DefaultDir = "media"

var (
	ErrContentRequired  = errors.New("media: content is required")
	ErrFilenameRequired = errors.New("media: filename is required")
)

// Asset is the result of an upload: where the bytes landed and the raw URL
// a post can embed. Posts treat the URL as an opaque string.
type Asset struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Config parameterises the uploader.
type Config struct {
	// Dir is the directory assets are committed under. Defaults to DefaultDir.
	Dir string
	// RawBaseURL prefixes stored paths to form publicly fetchable URLs, e.g.
	// https://raw.githubusercontent.com/owner/repo/main. Empty means the
	// returned URL is the repository-relative path.
	RawBaseURL string
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithClock overrides the timestamp source for generated filenames.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		if now != nil {
			u.now = now
		}
	}
}

// Uploader commits binary assets into the content store under generated
// timestamped, content-addressed filenames. Re-uploading identical bytes in
// the same second resolves to the existing asset instead of failing.
type Uploader struct {
	store      interfaces.FileStore
	dir        string
	rawBaseURL string
	logger     interfaces.Logger
	now        func() time.Time
}

// NewUploader constructs an uploader over the given store.
func NewUploader(store interfaces.FileStore, cfg Config, opts ...Option) (*Uploader, error) {
	if store == nil {
		return nil, errors.New("media: store is required")
	}

	dir := strings.Trim(cfg.Dir, "/")
	if dir == "" {
		dir = DefaultDir
	}

	uploader := &Uploader{
		store:      store,
		dir:        dir,
		rawBaseURL: strings.TrimRight(strings.TrimSpace(cfg.RawBaseURL), "/"),
		logger:     logging.NoOp(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uploader)
	}
	return uploader, nil
}

// Upload commits content under a generated filename that keeps the original
// extension, and returns the asset location.
func (u *Uploader) Upload(ctx context.Context, filename string, content []byte, auth interfaces.WriteAuthorization) (*Asset, error) {
	if len(content) == 0 {
		return nil, ErrContentRequired
	}
	if strings.TrimSpace(filename) == "" {
		return nil, ErrFilenameRequired
	}
	if !auth.Valid() {
		return nil, errors.New("media: write authorization is required")
	}

	storePath, err := u.assetPath(filename, content)
	if err != nil {
		return nil, err
	}

	_, err = u.store.Write(ctx, storePath, content, interfaces.WriteOptions{
		Message:   fmt.Sprintf("media: upload %s", path.Base(storePath)),
		Committer: auth.Committer,
	})
	if err != nil && !gitstore.IsAlreadyExists(err) {
		return nil, err
	}
	if gitstore.IsAlreadyExists(err) {
		// Same digest in the same second: the bytes are already there.
		u.logger.Debug("media.upload.deduplicated", "path", storePath)
	} else {
		u.logger.Info("media.uploaded", "path", storePath, "bytes", len(content))
	}

	return &Asset{Path: storePath, URL: u.assetURL(storePath)}, nil
}

// assetPath builds media/<year>/<month>/<unix>-<digest><ext>. The digest is
// derived from the content, so identical bytes map to identical names.
func (u *Uploader) assetPath(filename string, content []byte) (string, error) {
	uid, err := hashid.NewUUID(string(content), hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil {
		return "", fmt.Errorf("media: derive content digest: %w", err)
	}
	digest := strings.ReplaceAll(uid.String(), "-", "")[:12]

	now := u.now().UTC()
	ext := strings.ToLower(path.Ext(filename))

	return fmt.Sprintf("%s/%04d/%02d/%d-%s%s",
		u.dir, now.Year(), int(now.Month()), now.Unix(), digest, ext), nil
}

func (u *Uploader) assetURL(storePath string) string {
	if u.rawBaseURL == "" {
		return storePath
	}
	return u.rawBaseURL + "/" + storePath
}
