package tts

import "sort"

// DefaultVoice is used when a job does not specify a narrator.
const DefaultVoice = "george"

// elevenLabsVoices maps friendly narrator names to ElevenLabs voice IDs.
var elevenLabsVoices = map[string]string{
	"george": "JBFqnCBsd6RMkjVDRZzb",
	"daniel": "onwK4e9ZLuTAKqWW03F9",
	"bill":   "pqHfZKP75CvOlQylNhV4",
	"clyde":  "2EiwWnXFnvU5JabPnv8n",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"antoni": "ErXwobaYiN019PkySvjV",
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"drew":   "29vD33N1CtxCmqQRPOHJ",
}

// ResolveVoiceID maps a friendly voice name to an ElevenLabs voice ID. An
// unknown name is passed through unchanged, so callers can supply a raw
// voice ID directly.
func ResolveVoiceID(name string) string {
	if name == "" {
		name = DefaultVoice
	}
	if id, ok := elevenLabsVoices[name]; ok {
		return id
	}
	return name
}

// VoiceNames returns the known friendly voice names in sorted order.
func VoiceNames() []string {
	names := make([]string, 0, len(elevenLabsVoices))
	for name := range elevenLabsVoices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
