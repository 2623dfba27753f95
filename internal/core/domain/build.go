package domain

import (
	"time"

	"github.com/google/uuid"
)

type BuildStatus string

const (
	BuildStatusPending   BuildStatus = "pending"
	BuildStatusBuilding  BuildStatus = "building"
	BuildStatusSucceeded BuildStatus = "succeeded"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// Valid reports whether s is a known build status.
func (s BuildStatus) Valid() bool {
	switch s {
	case BuildStatusPending, BuildStatusBuilding, BuildStatusSucceeded,
		BuildStatusFailed, BuildStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are allowed.
func (s BuildStatus) Terminal() bool {
	switch s {
	case BuildStatusSucceeded, BuildStatusFailed, BuildStatusCancelled:
		return true
	}
	return false
}

// Build is one attempt to publish a site environment at a specific commit.
type Build struct {
	ID            uuid.UUID
	SiteID        uuid.UUID
	EnvironmentID uuid.UUID
	Branch        string
	Tag           string
	GitHash       string
	Path          string
	Status        BuildStatus
	Detail        string
	CreatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
}

// BuildJob carries everything a build worker needs to clone and publish.
type BuildJob struct {
	BuildID     uuid.UUID
	SiteID      uuid.UUID
	Environment string
	CloneURL    string
	// Ref is the full reference to clone (refs/heads/... or refs/tags/...).
	// Tag builds rely on it; a tag-create delivery carries no commit hash.
	Ref         string
	GitHash     string
	Token       string
	PublishPath string
}

// SiteConfig is the optional .franklin.yml file in the root of a repository.
type SiteConfig struct {
	// OutputDir is the directory within the repository that holds the built
	// site. Defaults to the repository root.
	OutputDir string `yaml:"output_dir"`
}

// SiteConfigPath is where Franklin looks for per-repo build configuration.
const SiteConfigPath = ".franklin.yml"
