package storage

import "context"

// NoopPublisher is used when no S3 bucket is configured. Finished videos
// stay on local disk and are served by the download endpoints.
type NoopPublisher struct{}

// Compile-time check that NoopPublisher implements Publisher.
var _ Publisher = (*NoopPublisher)(nil)

// NewNoopPublisher creates a publisher that refuses all uploads.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// PublishVideo always returns ErrS3NotConfigured.
func (p *NoopPublisher) PublishVideo(_ context.Context, _, _ string) (string, error) {
	return "", ErrS3NotConfigured
}

// Enabled reports that publication is not configured.
func (p *NoopPublisher) Enabled() bool { return false }
