package llm

import (
	"context"
	"fmt"
	"strings"
)

// Metadata is the publishing metadata generated from a narration script.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

const metadataPromptTemplate = `Based on this video narration script, generate metadata for publishing the video.

Script:
%s

Respond with exactly three lines in this format:
TITLE: <a catchy title under 100 characters>
DESCRIPTION: <a 2-3 sentence description>
TAGS: <10 to 15 comma-separated tags, no hash signs>`

// scriptExcerptChars caps how much of the script is sent to the model.
const scriptExcerptChars = 3000

// GenerateMetadata asks the completer for a publishing title, description
// and tag list derived from the narration script.
func GenerateMetadata(ctx context.Context, completer Completer, script string) (*Metadata, error) {
	excerpt := script
	if len(excerpt) > scriptExcerptChars {
		excerpt = excerpt[:scriptExcerptChars]
	}

	response, err := completer.Complete(ctx, fmt.Sprintf(metadataPromptTemplate, excerpt))
	if err != nil {
		return nil, fmt.Errorf("generate metadata: %w", err)
	}

	meta := parseMetadata(response)
	if meta.Title == "" {
		meta.Title = fallbackTitle(script)
	}
	return meta, nil
}

// parseMetadata extracts the TITLE/DESCRIPTION/TAGS lines from a model
// response. Lines the model omits stay empty; stray markdown emphasis is
// stripped.
func parseMetadata(response string) *Metadata {
	meta := &Metadata{}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "*_ "))
		switch {
		case hasPrefixFold(line, "TITLE:"):
			meta.Title = strings.TrimSpace(line[len("TITLE:"):])
		case hasPrefixFold(line, "DESCRIPTION:"):
			meta.Description = strings.TrimSpace(line[len("DESCRIPTION:"):])
		case hasPrefixFold(line, "TAGS:"):
			meta.Tags = parseTags(line[len("TAGS:"):])
		}
	}

	return meta
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func parseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// fallbackTitle derives a title from the script's opening when the model
// response had none.
func fallbackTitle(script string) string {
	script = strings.TrimSpace(script)
	if script == "" {
		return "Untitled Video"
	}
	if i := strings.IndexAny(script, ".!?\n"); i > 0 {
		script = script[:i]
	}
	if len(script) > 100 {
		script = script[:97] + "..."
	}
	return script
}
