package llm

import (
	"context"
	"fmt"
	"strings"
)

const motionPromptTemplate = `You are writing a camera motion prompt for an image-to-video model.

The video's narration begins:
%s

Describe, in at most 50 words, subtle camera and subject motion that fits
this narration. Mention only visual movement. Respond with the motion
description alone, no preamble.`

// motionExcerptChars caps how much of the script informs the motion prompt.
const motionExcerptChars = 1000

// GenerateMotionPrompt produces a short camera-motion description for the
// image-to-video submission when the caller did not supply one.
func GenerateMotionPrompt(ctx context.Context, completer Completer, script string) (string, error) {
	excerpt := strings.TrimSpace(script)
	if len(excerpt) > motionExcerptChars {
		excerpt = excerpt[:motionExcerptChars]
	}

	response, err := completer.Complete(ctx, fmt.Sprintf(motionPromptTemplate, excerpt))
	if err != nil {
		return "", fmt.Errorf("generate motion prompt: %w", err)
	}

	prompt := strings.TrimSpace(strings.Trim(response, `"'`))
	if prompt == "" {
		return "", ErrEmptyCompletion
	}
	return prompt, nil
}
