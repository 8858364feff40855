package call

import (
	"time"
)

type Status string

// Only Reprocess writes StatusPending; the processing backend owns the rest.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Call struct {
	ID              string     `gorm:"column:id;type:varchar(255);primaryKey"        json:"id"`
	FromNumber      string     `gorm:"column:from_number;type:varchar(64)"           json:"from_number"`
	ToNumber        string     `gorm:"column:to_number;type:varchar(64)"             json:"to_number"`
	Direction       string     `gorm:"column:direction;type:varchar(16)"             json:"direction"`
	DurationSeconds int        `gorm:"column:duration_seconds;default:0"             json:"duration_seconds"`
	AgentEmail      string     `gorm:"column:agent_email;type:varchar(255)"          json:"agent_email"`
	Status          Status     `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	HubspotCallID   *string    `gorm:"column:hubspot_call_id;type:varchar(255)"      json:"hubspot_call_id"`
	HubspotSyncedAt *time.Time `gorm:"column:hubspot_synced_at"                      json:"hubspot_synced_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"              json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"              json:"updated_at"`
}

func (Call) TableName() string {
	return "calls"
}

// Filter narrows ListCalls; zero values mean "any".
type Filter struct {
	Status Status
	Limit  int
}
