package setting

import "time"

// KeySummaryPrompt holds the operator's default summary prompt template.
const KeySummaryPrompt = "summary_prompt"

type Setting struct {
	Key       string    `gorm:"column:key;type:varchar(255);primaryKey" json:"key"`
	Value     string    `gorm:"column:value;type:text"                  json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"        json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
