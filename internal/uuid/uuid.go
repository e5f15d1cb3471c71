// Package uuid wraps google/uuid behind an interface so identifiers can be mocked
package uuid

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks -source=uuid.go

import (
	"github.com/google/uuid"
)

// Generator is an interface for generating unique identifiers
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements the Generator interface using Google's UUID package
type GoogleUUIDGenerator struct{}

// New generates a new random (v4) UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.NewString()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// IsValid reports whether s parses as a UUID
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}
