package media

import (
	"fmt"

	"github.com/google/uuid"
)

// SummaryAudioKey addresses the audio of one summary attempt. Concurrent
// attempts on the same chat generation never share an object.
func SummaryAudioKey(chatID uuid.UUID, generation int, summaryID uuid.UUID, ext string) string {
	return fmt.Sprintf("summaries/audio/%s-%d-%s.%s", chatID, generation, summaryID, ext)
}

// AnswerAudioKey addresses an uploaded answer recording
func AnswerAudioKey(chatID uuid.UUID, ext string) string {
	return fmt.Sprintf("answers/audio/%s-%s%s", chatID, uuid.New(), ext)
}
