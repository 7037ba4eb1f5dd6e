package commands

import (
	"context"

	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/markdown"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// NewSavePostHandler binds the save command to the content repository. The
// authorization is fixed at construction: commands carry content, not
// credentials.
func NewSavePostHandler(posts *blog.Repository, auth interfaces.WriteAuthorization, opts ...HandlerOption[SavePostCommand]) *Handler[SavePostCommand] {
	return NewHandler(func(ctx context.Context, cmd SavePostCommand) error {
		_, err := posts.Save(ctx, cmd.Post, auth)
		return err
	}, append(opts, WithOperation[SavePostCommand]("post.save"))...)
}

// NewDeletePostHandler binds the delete command to the content repository.
func NewDeletePostHandler(posts *blog.Repository, auth interfaces.WriteAuthorization, opts ...HandlerOption[DeletePostCommand]) *Handler[DeletePostCommand] {
	return NewHandler(func(ctx context.Context, cmd DeletePostCommand) error {
		return posts.Delete(ctx, cmd.ID, auth)
	}, append(opts, WithOperation[DeletePostCommand]("post.delete"))...)
}

// NewImportFileHandler parses a Markdown file into a post draft and persists
// it. Re-importing the same file updates the existing document because the
// post id derives from the slug.
func NewImportFileHandler(importer *markdown.Importer, posts *blog.Repository, auth interfaces.WriteAuthorization, opts ...HandlerOption[ImportFileCommand]) *Handler[ImportFileCommand] {
	return NewHandler(func(ctx context.Context, cmd ImportFileCommand) error {
		post, err := importer.Import(cmd.Source)
		if err != nil {
			return err
		}
		_, err = posts.Save(ctx, post, auth)
		return err
	}, append(opts, WithOperation[ImportFileCommand]("markdown.import_file"))...)
}
