package service

import (
	"database/sql"

	"github.com/advisorly/review-engine-backend/internal/database"
	"github.com/advisorly/review-engine-backend/internal/version"
)

// SystemService exposes health and version information.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// CheckHealth verifies database connectivity.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// Version returns the application version string.
func (s *SystemService) Version() string {
	return version.Version
}
