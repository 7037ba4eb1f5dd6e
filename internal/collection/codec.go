package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeCorrupt       = "COLLECTION_CORRUPT"
	textCodeWriteConflict = "COLLECTION_WRITE_CONFLICT"
)

// Codec serialises a whole collection of documents to and from the single
// JSON file the store persists. Encoding is deterministic and pretty-printed
// so revisions in the backing repository stay human-diffable, and the
// sequence is sorted through Handlers.Less before encoding: newest-first
// ordering is part of the write contract, not a display concern.
type Codec[T any] struct {
	less func(a, b T) bool
}

// NewCodec builds a codec using the ordering function from the repository
// handlers. A nil less function keeps the input order.
func NewCodec[T any](less func(a, b T) bool) Codec[T] {
	return Codec[T]{less: less}
}

// Decode parses the stored JSON array. Empty or absent content decodes to an
// empty sequence; malformed structure surfaces a corrupt-collection error so
// callers never silently drop documents.
func (c Codec[T]) Decode(content []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var docs []T
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "collection: stored data is corrupt").
			WithTextCode(textCodeCorrupt)
	}
	return docs, nil
}

// Encode produces the canonical byte form of the collection: sorted, two
// space indented, trailing newline.
func (c Codec[T]) Encode(docs []T) ([]byte, error) {
	ordered := append([]T(nil), docs...)
	if c.less != nil {
		sort.SliceStable(ordered, func(i, j int) bool {
			return c.less(ordered[i], ordered[j])
		})
	}
	if ordered == nil {
		ordered = []T{}
	}

	encoded, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "collection: encode failed").
			WithTextCode(textCodeCorrupt)
	}
	return append(encoded, '\n'), nil
}

// IsCorrupt reports whether err marks stored data that could not be decoded.
func IsCorrupt(err error) bool {
	return hasTextCode(err, textCodeCorrupt)
}

// IsWriteConflict reports whether a mutation exhausted its conflict retries.
func IsWriteConflict(err error) bool {
	return hasTextCode(err, textCodeWriteConflict)
}

func hasTextCode(err error, code string) bool {
	var ge *goerrors.Error
	if errors.As(err, &ge) && ge != nil {
		return ge.TextCode == code
	}
	return false
}
