package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateMetadata(t *testing.T) {
	completer := &fakeCompleter{name: "fake", response: strings.Join([]string{
		"TITLE: The Hidden Valley",
		"DESCRIPTION: A journey through mist and stone. Narrated from above.",
		"TAGS: valley, mist, nature, drone, travel, scenery, calm, morning, fog, mountains",
	}, "\n")}

	meta, err := GenerateMetadata(context.Background(), completer, "The valley wakes slowly...")
	if err != nil {
		t.Fatalf("GenerateMetadata: %v", err)
	}

	if meta.Title != "The Hidden Valley" {
		t.Errorf("unexpected title: %q", meta.Title)
	}
	if !strings.Contains(meta.Description, "journey") {
		t.Errorf("unexpected description: %q", meta.Description)
	}
	if len(meta.Tags) != 10 {
		t.Errorf("expected 10 tags, got %d: %v", len(meta.Tags), meta.Tags)
	}
	if meta.Tags[0] != "valley" {
		t.Errorf("unexpected first tag: %q", meta.Tags[0])
	}
}

func TestParseMetadata_LenientFormatting(t *testing.T) {
	// Models wrap labels in markdown and vary the case.
	response := strings.Join([]string{
		"**Title:** Ocean Sunrise",
		"description: Waves at dawn.",
		"TAGS: #ocean, #sunrise , waves,, sea",
	}, "\n")

	meta := parseMetadata(response)
	if meta.Title != "Ocean Sunrise" {
		t.Errorf("unexpected title: %q", meta.Title)
	}
	if meta.Description != "Waves at dawn." {
		t.Errorf("unexpected description: %q", meta.Description)
	}
	want := []string{"ocean", "sunrise", "waves", "sea"}
	if len(meta.Tags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), meta.Tags)
	}
	for i, tag := range want {
		if meta.Tags[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, meta.Tags[i])
		}
	}
}

func TestGenerateMetadata_FallbackTitle(t *testing.T) {
	completer := &fakeCompleter{name: "fake", response: "DESCRIPTION: something\nTAGS: a, b"}

	meta, err := GenerateMetadata(context.Background(), completer, "A story about bees. They fly far.")
	if err != nil {
		t.Fatalf("GenerateMetadata: %v", err)
	}
	if meta.Title != "A story about bees" {
		t.Errorf("expected title from script opening, got %q", meta.Title)
	}
}

func TestGenerateMetadata_ProviderError(t *testing.T) {
	completer := &fakeCompleter{name: "fake", err: errors.New("down")}
	_, err := GenerateMetadata(context.Background(), completer, "script")
	if err == nil {
		t.Fatal("expected error from failing completer")
	}
}

func TestGenerateMotionPrompt_StripsSurroundingQuotes(t *testing.T) {
	completer := &fakeCompleter{name: "fake", response: `"Slow push-in on the lighthouse as waves roll below."`}

	prompt, err := GenerateMotionPrompt(context.Background(), completer, "The lighthouse keeper watches the storm.")
	if err != nil {
		t.Fatalf("GenerateMotionPrompt: %v", err)
	}
	if strings.HasPrefix(prompt, `"`) || strings.HasSuffix(prompt, `"`) {
		t.Errorf("expected surrounding quotes stripped, got %q", prompt)
	}
	if !strings.Contains(prompt, "push-in") {
		t.Errorf("unexpected prompt: %q", prompt)
	}
}

func TestGenerateMotionPrompt_EmptyResponse(t *testing.T) {
	completer := &fakeCompleter{name: "fake", response: "  "}
	_, err := GenerateMotionPrompt(context.Background(), completer, "script")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}
