package mysql

import "statustracker/pkg/store/mysql/model"

// Re-export types from model package
type (
	StatusObservation = model.StatusObservation
)
