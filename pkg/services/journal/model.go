package journal

import "time"

// Boot is one process start recorded by the journal.
type Boot struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Hostname  string     `gorm:"size:255" json:"hostname"`
	PID       int        `gorm:"column:pid" json:"pid"`
	Version   string     `gorm:"size:64" json:"version,omitempty"`
	StartedAt time.Time  `gorm:"not null;index" json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
}

// TableName returns the table name for Boot.
func (Boot) TableName() string {
	return "boots"
}

// Running reports whether the boot has no recorded stop.
func (b *Boot) Running() bool {
	return b.StoppedAt == nil
}
