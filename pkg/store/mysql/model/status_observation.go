package model

import "time"

// StatusObservation is one (person, capture time) cell of the accumulated
// table in long format. Absent cells are never stored.
type StatusObservation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	PersonKey  string    `gorm:"column:person_key;type:varchar(255);not null;uniqueIndex:idx_person_observed,priority:1"`
	ObservedAt time.Time `gorm:"column:observed_at;type:datetime;not null;uniqueIndex:idx_person_observed,priority:2;index:idx_observed_at"`
	State      string    `gorm:"column:state;type:varchar(20);not null"` // On Duty | Off Duty
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StatusObservation) TableName() string { return "status_observations" }
