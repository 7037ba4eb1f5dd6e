package blog

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DeterministicID derives a stable post id from the primary-locale slug.
// Importers use it so re-running an import updates the same document instead
// of appending a duplicate.
//
// Callers must pass the normalized slug; cross-collection collisions are
// prevented by the domain prefix.
func DeterministicID(primarySlug string) uuid.UUID {
	trimmed := strings.TrimSpace(primarySlug)
	if trimmed == "" {
		return uuid.Nil
	}
	key := "go-gitcms:post:" + trimmed
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid
}
