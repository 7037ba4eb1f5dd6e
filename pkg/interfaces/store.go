package interfaces

import "context"

// File is the unit the versioned store reads and writes: the full byte
// content of a path plus the integrity token the store computed for that
// content. The token is opaque to callers; it only travels back into
// WriteOptions to guard the next write against concurrent modification.
type File struct {
	Path    string
	Content []byte
	Token   string
}

// Committer identifies the author recorded on every store revision. Both
// fields are required; the revision log is the system's only audit trail.
type Committer struct {
	Name  string
	Email string
}

// WriteOptions carries the conditional-write contract for FileStore.Write.
// Token is the integrity token returned by the Read that preceded this
// write; an empty Token means "create fresh" and the store must fail when
// the path already exists.
type WriteOptions struct {
	Token     string
	Message   string
	Committer Committer
}

// FileStore reads and writes whole files in a remote version-controlled
// repository. Implementations must surface the error taxonomy from
// internal/gitstore (not-found, conflict, already-exists, unavailable) so
// repositories can drive their retry cycle off category checks alone.
type FileStore interface {
	Read(ctx context.Context, path string) (File, error)
	Write(ctx context.Context, path string, content []byte, opts WriteOptions) (File, error)
}
