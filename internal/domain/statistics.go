package domain

import "time"

// StatisticsRowID is the fixed key of the single persisted snapshot row.
const StatisticsRowID = 1

type StatisticsSnapshot struct {
	ID              int       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	TotalUsers      int64     `gorm:"not null" json:"totalUsers"`
	TotalTickets    int64     `gorm:"not null" json:"totalTickets"`
	PendingTickets  int64     `gorm:"not null" json:"pendingTickets"`
	ResolvedTickets int64     `gorm:"not null" json:"resolvedTickets"`
	LastUpdated     time.Time `gorm:"not null" json:"lastUpdated"`
}

func (StatisticsSnapshot) TableName() string { return "statistics" }

// SameCounters compares the four counters, ignoring LastUpdated.
func (s StatisticsSnapshot) SameCounters(o StatisticsSnapshot) bool {
	return s.TotalUsers == o.TotalUsers &&
		s.TotalTickets == o.TotalTickets &&
		s.PendingTickets == o.PendingTickets &&
		s.ResolvedTickets == o.ResolvedTickets
}
