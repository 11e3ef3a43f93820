// ABOUTME: Embedded GraphQL schema and its binding to the root resolver
// ABOUTME: Parsing fails fast if any schema field lacks a resolver method

package graph

import (
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
)

// MaxDepth bounds query nesting; friends-of-friends can otherwise recurse without limit.
const MaxDepth = 10

//go:embed schema.graphql
var schemaSDL string

// SDL returns the schema definition.
func SDL() string {
	return schemaSDL
}

// NewSchema parses the schema and binds it to root.
func NewSchema(root *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, root, graphql.MaxDepth(MaxDepth))
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return schema, nil
}
