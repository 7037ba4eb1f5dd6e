package blog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/post.schema.json
var schemaFS embed.FS

var (
	postSchemaOnce sync.Once
	postSchema     *jsonschema.Schema
	postSchemaErr  error
)

// compiledPostSchema compiles the embedded post schema on first use.
func compiledPostSchema() (*jsonschema.Schema, error) {
	postSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schema/post.schema.json")
		if err != nil {
			postSchemaErr = fmt.Errorf("blog: read embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("post.schema.json", bytes.NewReader(raw)); err != nil {
			postSchemaErr = fmt.Errorf("blog: register schema: %w", err)
			return
		}
		postSchema, postSchemaErr = compiler.Compile("post.schema.json")
	})
	return postSchema, postSchemaErr
}

// validateSchema checks the post's serialised form against the embedded JSON
// schema. This is the last line of defence before encode: a buggy writer can
// never commit a structurally invalid document into the collection.
func validateSchema(post *Post) error {
	schema, err := compiledPostSchema()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("blog: marshal post for schema check: %w", err)
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("blog: decode post for schema check: %w", err)
	}

	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("blog: post failed schema validation: %w", err)
	}
	return nil
}
