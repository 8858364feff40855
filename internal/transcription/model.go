package transcription

import (
	"time"

	"gorm.io/datatypes"
)

// SpeakerLabel is one diarized segment of a transcription.
type SpeakerLabel struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

type Transcription struct {
	ID            string         `gorm:"column:id;type:uuid;primaryKey"                          json:"id"`
	CallID        string         `gorm:"column:call_id;type:varchar(255);uniqueIndex;not null"   json:"call_id"`
	FullText      string         `gorm:"column:full_text;type:text"                              json:"full_text"`
	Summary       string         `gorm:"column:summary;type:text"                                json:"summary"`
	SpeakerLabels datatypes.JSON `gorm:"column:speaker_labels;type:jsonb"                        json:"speaker_labels"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"                        json:"created_at"`
}

func (Transcription) TableName() string {
	return "transcriptions"
}
