package videogen

import (
	"context"
	"errors"
	"testing"

	"github.com/narravid/narravid-api/internal/kling"
)

type fakeKlingClient struct {
	submitOpts kling.SubmitOptions
	submitID   string
	statusRes  kling.TaskResult
	statusErr  error
}

func (f *fakeKlingClient) Submit(ctx context.Context, opts kling.SubmitOptions) (string, error) {
	f.submitOpts = opts
	return f.submitID, nil
}

func (f *fakeKlingClient) Status(ctx context.Context, taskID string) (kling.TaskResult, error) {
	return f.statusRes, f.statusErr
}

func (f *fakeKlingClient) Download(ctx context.Context, assetURL, destPath string) error {
	return nil
}

func TestKlingGenerator_SubmitImagePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		req       SubmitRequest
		wantImage string
	}{
		{
			name:      "url only",
			req:       SubmitRequest{ImageURL: "https://img.example/a.png"},
			wantImage: "https://img.example/a.png",
		},
		{
			name:      "base64 only",
			req:       SubmitRequest{ImageBase64: "aGVsbG8="},
			wantImage: "aGVsbG8=",
		},
		{
			name:      "url wins over base64",
			req:       SubmitRequest{ImageURL: "https://img.example/a.png", ImageBase64: "aGVsbG8="},
			wantImage: "https://img.example/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeKlingClient{submitID: "t1"}
			gen := NewKlingGenerator(client)

			if _, err := gen.Submit(context.Background(), tt.req); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if client.submitOpts.Image != tt.wantImage {
				t.Errorf("expected image %q, got %q", tt.wantImage, client.submitOpts.Image)
			}
		})
	}
}

func TestKlingGenerator_SubmitDefaults(t *testing.T) {
	client := &fakeKlingClient{submitID: "t1"}
	gen := NewKlingGenerator(client)

	if _, err := gen.Submit(context.Background(), SubmitRequest{ImageBase64: "img"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	defaults := kling.DefaultSubmitOptions()
	if client.submitOpts.DurationSec != defaults.DurationSec {
		t.Errorf("expected default duration %d, got %d", defaults.DurationSec, client.submitOpts.DurationSec)
	}
	if client.submitOpts.AspectRatio != defaults.AspectRatio {
		t.Errorf("expected default aspect ratio %s, got %s", defaults.AspectRatio, client.submitOpts.AspectRatio)
	}
}

func TestKlingGenerator_StatusMapping(t *testing.T) {
	tests := []struct {
		provider kling.TaskStatus
		want     TaskState
	}{
		{kling.StatusSubmitted, StatePending},
		{kling.StatusProcessing, StateProcessing},
		{kling.StatusSucceed, StateSucceeded},
		{kling.StatusFailed, StateFailed},
		{kling.TaskStatus("something-new"), StateProcessing},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			client := &fakeKlingClient{statusRes: kling.TaskResult{Status: tt.provider}}
			gen := NewKlingGenerator(client)

			update, err := gen.Status(context.Background(), "t1")
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if update.State != tt.want {
				t.Errorf("expected %s, got %s", tt.want, update.State)
			}
		})
	}
}

func TestKlingGenerator_StatusCarriesResultAndMessage(t *testing.T) {
	client := &fakeKlingClient{statusRes: kling.TaskResult{
		Status:   kling.StatusSucceed,
		VideoURL: "https://cdn.example/v.mp4",
	}}
	gen := NewKlingGenerator(client)

	update, err := gen.Status(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if update.ResultURL != "https://cdn.example/v.mp4" {
		t.Errorf("expected result URL carried through, got %q", update.ResultURL)
	}

	client.statusRes = kling.TaskResult{Status: kling.StatusFailed, Message: "nsfw"}
	update, err = gen.Status(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if update.Message != "nsfw" {
		t.Errorf("expected failure message carried through, got %q", update.Message)
	}
}

func TestKlingGenerator_StatusError(t *testing.T) {
	client := &fakeKlingClient{statusErr: kling.ErrStatusCheckFailed}
	gen := NewKlingGenerator(client)

	_, err := gen.Status(context.Background(), "t1")
	if !errors.Is(err, kling.ErrStatusCheckFailed) {
		t.Errorf("expected status error passed through, got %v", err)
	}
}
