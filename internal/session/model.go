package session

import "time"

// Session is the legacy record of a call. Its id is the call id.
type Session struct {
	ID          string    `gorm:"column:id;type:varchar(255);primaryKey"  json:"id"`
	FromNumber  string    `gorm:"column:from_number;type:varchar(64)"     json:"from_number"`
	ToNumber    string    `gorm:"column:to_number;type:varchar(64)"       json:"to_number"`
	Direction   string    `gorm:"column:direction;type:varchar(16)"       json:"direction"`
	AgentUserID string    `gorm:"column:agent_user_id;type:varchar(255)"  json:"agent_user_id"`
	Transcript  string    `gorm:"column:transcript;type:text"             json:"transcript"`
	Summary     string    `gorm:"column:summary;type:text"                json:"summary"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"        json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"                       json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
