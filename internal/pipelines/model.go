package pipelines

import "time"

// Status enumerates pipeline run states.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// ValidStatus reports whether s is a known pipeline status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusRunning, StatusSuccess, StatusFailed, StatusPending:
		return true
	default:
		return false
	}
}

// Pipeline is one CI/CD build execution for a repository/branch/commit.
type Pipeline struct {
	ID          string
	RepoName    string
	Branch      string
	Status      Status
	Progress    *int
	Duration    string
	Author      string
	CommitHash  string
	CurrentStep string
	VelaBuildID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
