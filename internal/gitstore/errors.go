package gitstore

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeNotFound      = "STORE_PATH_NOT_FOUND"
	textCodeConflict      = "STORE_TOKEN_CONFLICT"
	textCodeAlreadyExists = "STORE_PATH_EXISTS"
	textCodeUnavailable   = "STORE_UNAVAILABLE"
)

func notFoundError(path string) error {
	return goerrors.New(fmt.Sprintf("store: path %q not found", path), goerrors.CategoryNotFound).
		WithTextCode(textCodeNotFound)
}

func conflictError(path string) error {
	return goerrors.New(fmt.Sprintf("store: token mismatch writing %q", path), goerrors.CategoryConflict).
		WithTextCode(textCodeConflict)
}

func alreadyExistsError(path string) error {
	return goerrors.New(fmt.Sprintf("store: path %q already exists", path), goerrors.CategoryConflict).
		WithTextCode(textCodeAlreadyExists)
}

func unavailableError(err error, detail string) error {
	if err == nil {
		return goerrors.New("store: "+detail, goerrors.CategoryExternal).
			WithTextCode(textCodeUnavailable)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "store: "+detail).
		WithTextCode(textCodeUnavailable)
}

// IsNotFound reports whether err signals an absent path. Collection callers
// treat this as "collection is empty", not a failure.
func IsNotFound(err error) bool {
	return hasTextCode(err, textCodeNotFound)
}

// IsConflict reports whether err signals a lost-update race: the integrity
// token no longer matches the store's current content for the path.
func IsConflict(err error) bool {
	return hasTextCode(err, textCodeConflict)
}

// IsAlreadyExists reports whether a tokenless create raced with another
// first-writer.
func IsAlreadyExists(err error) bool {
	return hasTextCode(err, textCodeAlreadyExists)
}

// IsUnavailable reports whether err signals a transport or auth failure.
func IsUnavailable(err error) bool {
	return hasTextCode(err, textCodeUnavailable)
}

func hasTextCode(err error, code string) bool {
	var ge *goerrors.Error
	if errors.As(err, &ge) && ge != nil {
		return ge.TextCode == code
	}
	return false
}
