// Package id provides unique identifier generation for jobs.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in a generated job ID.
const Length = 8

// Generate creates a new unique job ID.
// It is the first 8 characters of a random UUID, which keeps job
// directory names short while staying unique enough for a single
// work directory.
// Example: "3f8a92c1"
func Generate() string {
	u := uuid.NewString()
	return strings.ReplaceAll(u, "-", "")[:Length]
}

// Valid reports whether s looks like a generated job ID. It is used to
// reject path-traversal attempts before a job ID is joined into a
// filesystem path.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
