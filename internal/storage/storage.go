// Package storage publishes finished videos to durable storage. The S3
// implementation uploads final renders; the local implementation is the
// no-op used when no bucket is configured.
package storage

import (
	"context"
	"errors"
)

// ErrS3NotConfigured is returned when publication is attempted without an
// S3 bucket configured.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// Publisher defines the interface for publishing finished videos.
type Publisher interface {
	// PublishVideo uploads the file at path under the given job ID and
	// returns the public URL.
	PublishVideo(ctx context.Context, jobID, path string) (url string, err error)

	// Enabled reports whether publication is configured.
	Enabled() bool
}
