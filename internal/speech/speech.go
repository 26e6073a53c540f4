// Package speech turns summary text into audio through a text-to-speech
// provider selected by speech.provider.
package speech

import "context"

// Audio is synthesized speech ready to be stored
type Audio struct {
	Data        []byte
	Format      string // file extension without the dot
	ContentType string
}

// Synthesizer converts text to speech
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// MP3 builds an Audio value for MPEG audio data
func MP3(data []byte) *Audio {
	return &Audio{Data: data, Format: "mp3", ContentType: "audio/mpeg"}
}
