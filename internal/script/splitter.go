// Package script splits long narration text into synthesis-sized chunks.
package script

import "strings"

// Split breaks text into chunks of at most maxChars characters, preferring
// to cut on paragraph boundaries and falling back to sentence boundaries
// when a single paragraph is too long.
//
// A sentence that alone exceeds maxChars is passed through as its own
// chunk rather than cut mid-sentence; downstream synthesis providers
// reject such chunks with a clear error, which beats producing audio that
// stops mid-word.
func Split(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxChars {
			// The paragraph alone is too big: emit what we have, then
			// pack its sentences.
			flush()
			for _, sentence := range splitSentences(para) {
				appendPiece(&chunks, &current, sentence, " ", maxChars)
			}
			flush()
			continue
		}

		appendPiece(&chunks, &current, para, "\n\n", maxChars)
	}
	flush()

	return chunks
}

// appendPiece adds piece to the current chunk, starting a new chunk when
// the separator plus piece would exceed maxChars.
func appendPiece(chunks *[]string, current *strings.Builder, piece, sep string, maxChars int) {
	if current.Len() == 0 {
		current.WriteString(piece)
		return
	}
	if current.Len()+len(sep)+len(piece) <= maxChars {
		current.WriteString(sep)
		current.WriteString(piece)
		return
	}
	*chunks = append(*chunks, current.String())
	current.Reset()
	current.WriteString(piece)
}

// splitSentences breaks a paragraph on ". " boundaries, keeping the period
// with the sentence it closes.
func splitSentences(para string) []string {
	parts := strings.Split(para, ". ")
	sentences := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i < len(parts)-1 && !strings.HasSuffix(p, ".") {
			p += "."
		}
		sentences = append(sentences, p)
	}
	return sentences
}
