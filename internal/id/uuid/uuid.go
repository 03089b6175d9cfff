// Package uuid issues client identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates random UUID strings.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv4 string suitable as a browser session token.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid4: %w", err)
	}
	return id.String(), nil
}

// NewConnID returns a UUIDv7 string used to tell push connections apart.
func (Generator) NewConnID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}
