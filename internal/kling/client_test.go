package kling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	client, err := NewClient("test-access", "test-secret", WithBaseURL(baseURL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_MissingKeys(t *testing.T) {
	if _, err := NewClient("", "secret"); !errors.Is(err, ErrAccessKeyRequired) {
		t.Errorf("expected ErrAccessKeyRequired, got %v", err)
	}
	if _, err := NewClient("access", ""); !errors.Is(err, ErrSecretKeyRequired) {
		t.Errorf("expected ErrSecretKeyRequired, got %v", err)
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{StatusSubmitted, false},
		{StatusProcessing, false},
		{StatusSucceed, true},
		{StatusFailed, true},
		{TaskStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("TaskStatus(%q).IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
			}
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	var gotAuth string
	var gotBody submitRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/videos/image2video" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    0,
			"message": "SUCCEED",
			"data":    map[string]any{"task_id": "task-123", "task_status": "submitted"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	taskID, err := client.Submit(context.Background(), SubmitOptions{
		Image:       "base64-image-bytes",
		Prompt:      "slow pan across a misty valley",
		DurationSec: 10,
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if taskID != "task-123" {
		t.Errorf("expected task-123, got %s", taskID)
	}

	if gotBody.ModelName != "kling-v1-6" {
		t.Errorf("expected model kling-v1-6, got %s", gotBody.ModelName)
	}
	if gotBody.Mode != "pro" {
		t.Errorf("expected mode pro, got %s", gotBody.Mode)
	}
	if gotBody.Duration != "10" {
		t.Errorf("expected duration as string %q, got %q", "10", gotBody.Duration)
	}

	// The bearer token must be a valid HS256 JWT signed with the secret,
	// with the access key as issuer.
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	raw := strings.TrimPrefix(gotAuth, "Bearer ")
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != "HS256" {
			t.Errorf("expected HS256, got %s", tok.Method.Alg())
		}
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["iss"] != "test-access" {
		t.Errorf("expected iss test-access, got %v", claims["iss"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("expected exp claim")
	}
	if _, ok := claims["nbf"]; !ok {
		t.Error("expected nbf claim")
	}
}

func TestSubmit_FreshTokenPerRequest(t *testing.T) {
	tokens := make(map[string]bool)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens[r.Header.Get("Authorization")] = true
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"task_id": "task-1"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Advance the clock between calls so the signed claims, and therefore
	// the tokens, differ. Tokens must never be reused across requests.
	base := time.Unix(1_700_000_000, 0)
	calls := 0
	client.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	for i := 0; i < 3; i++ {
		if _, err := client.Submit(context.Background(), DefaultSubmitOptions()); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	if len(tokens) != 3 {
		t.Errorf("expected 3 distinct tokens, got %d", len(tokens))
	}
}

func TestSubmit_ProviderErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    1102,
			"message": "account balance not enough",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), DefaultSubmitOptions())
	if !errors.Is(err, ErrSubmitRejected) {
		t.Errorf("expected ErrSubmitRejected, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "account balance not enough") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestSubmit_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), DefaultSubmitOptions())
	if !errors.Is(err, ErrSubmitRejected) {
		t.Errorf("expected ErrSubmitRejected, got %v", err)
	}
}

func TestSubmit_NoTaskID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), DefaultSubmitOptions())
	if !errors.Is(err, ErrNoTaskIDReturned) {
		t.Errorf("expected ErrNoTaskIDReturned, got %v", err)
	}
}

func TestStatus_Decoding(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus TaskStatus
		wantURL    string
		wantMsg    string
	}{
		{
			name:       "submitted",
			body:       map[string]any{"code": 0, "data": map[string]any{"task_id": "t1", "task_status": "submitted"}},
			wantStatus: StatusSubmitted,
		},
		{
			name:       "processing",
			body:       map[string]any{"code": 0, "data": map[string]any{"task_id": "t1", "task_status": "processing"}},
			wantStatus: StatusProcessing,
		},
		{
			name: "succeed with video",
			body: map[string]any{"code": 0, "data": map[string]any{
				"task_id":     "t1",
				"task_status": "succeed",
				"task_result": map[string]any{"videos": []map[string]any{{"id": "v1", "url": "https://cdn.example/v1.mp4", "duration": "10"}}},
			}},
			wantStatus: StatusSucceed,
			wantURL:    "https://cdn.example/v1.mp4",
		},
		{
			name: "failed with message",
			body: map[string]any{"code": 0, "data": map[string]any{
				"task_id":         "t1",
				"task_status":     "failed",
				"task_status_msg": "content policy violation",
			}},
			wantStatus: StatusFailed,
			wantMsg:    "content policy violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/videos/image2video/t1" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			result, err := client.Status(context.Background(), "t1")
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, result.Status)
			}
			if result.VideoURL != tt.wantURL {
				t.Errorf("expected URL %q, got %q", tt.wantURL, result.VideoURL)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, result.Message)
			}
		})
	}
}

func TestStatus_TransientFailures(t *testing.T) {
	t.Run("http 500", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.Status(context.Background(), "t1")
		if !errors.Is(err, ErrStatusCheckFailed) {
			t.Errorf("expected ErrStatusCheckFailed, got %v", err)
		}
	})

	t.Run("provider error code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 500, "message": "internal"})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.Status(context.Background(), "t1")
		if !errors.Is(err, ErrStatusCheckFailed) {
			t.Errorf("expected ErrStatusCheckFailed, got %v", err)
		}
	})

	t.Run("missing task id", func(t *testing.T) {
		client := newTestClient(t, "http://unused")
		_, err := client.Status(context.Background(), "")
		if !errors.Is(err, ErrTaskIDRequired) {
			t.Errorf("expected ErrTaskIDRequired, got %v", err)
		}
	})
}

func TestDownload(t *testing.T) {
	t.Run("writes asset to dest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("mp4-bytes"))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		dest := filepath.Join(t.TempDir(), "out.mp4")

		if err := client.Download(context.Background(), server.URL+"/asset.mp4", dest); err != nil {
			t.Fatalf("Download: %v", err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != "mp4-bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("non-2xx fails and leaves no file", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		dest := filepath.Join(t.TempDir(), "out.mp4")

		err := client.Download(context.Background(), server.URL+"/asset.mp4", dest)
		if !errors.Is(err, ErrDownloadFailed) {
			t.Errorf("expected ErrDownloadFailed, got %v", err)
		}
	})
}
