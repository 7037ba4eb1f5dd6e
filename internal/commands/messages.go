package commands

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-gitcms/internal/blog"
)

const (
	savePostMessageType   = "gitcms.post.save"
	deletePostMessageType = "gitcms.post.delete"
	importFileMessageType = "gitcms.markdown.import_file"
)

// SavePostCommand persists a post through the content repository, running
// the full normalize/validate/write cycle.
type SavePostCommand struct {
	Post *blog.Post `json:"post"`
}

// Type implements command.Message.
func (SavePostCommand) Type() string { return savePostMessageType }

// Validate ensures a post payload is present before handlers execute. Field
// level validation happens inside the repository.
func (cmd SavePostCommand) Validate() error {
	if cmd.Post == nil {
		return validation.Errors{
			"post": validation.NewError("gitcms.post.save.post_required", "post is required"),
		}
	}
	return nil
}

// DeletePostCommand removes a post by id. Deleting an absent id is a no-op,
// matching the repository contract.
type DeletePostCommand struct {
	ID uuid.UUID `json:"id"`
}

// Type implements command.Message.
func (DeletePostCommand) Type() string { return deletePostMessageType }

// Validate ensures the target id is set.
func (cmd DeletePostCommand) Validate() error {
	if cmd.ID == uuid.Nil {
		return validation.Errors{
			"id": validation.NewError("gitcms.post.delete.id_required", "id is required"),
		}
	}
	return nil
}

// ImportFileCommand imports one Markdown file with YAML frontmatter as a
// post, creating or updating the document the slug maps to.
type ImportFileCommand struct {
	// Filename is informational, used for logging.
	Filename string `json:"filename,omitempty"`
	// Source is the raw file content, frontmatter included.
	Source []byte `json:"source"`
}

// Type implements command.Message.
func (ImportFileCommand) Type() string { return importFileMessageType }

// Validate ensures source content is present.
func (cmd ImportFileCommand) Validate() error {
	if len(cmd.Source) == 0 {
		return validation.Errors{
			"source": validation.NewError("gitcms.markdown.import_file.source_required", "source is required"),
		}
	}
	return nil
}
