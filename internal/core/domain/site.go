package domain

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Owner identifies the GitHub account (user or org) a repository belongs to.
type Owner struct {
	GithubID int64  `json:"id"`
	Login    string `json:"name"`
}

// Site represents a deployed or soon-to-be deployed static site backed by a
// GitHub repository.
type Site struct {
	ID            uuid.UUID
	GithubID      int64
	Owner         Owner
	Name          string
	DefaultBranch string
	Active        bool

	// GitHub-side resources installed at registration time.
	WebhookID   int64
	DeployKeyID int64

	// RegisteredBy is the user whose credentials were used to install the
	// webhook and deploy key.
	RegisteredBy uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the owner-qualified repository name, e.g. "octocat/blog".
func (s *Site) FullName() string {
	return s.Owner.Login + "/" + s.Name
}

// Path returns the root directory of the site on the static server.
func (s *Site) Path(basePath string) string {
	return filepath.Join(basePath, s.Owner.Login, s.Name)
}

// DeployStrategy controls which webhook events an environment builds from.
type DeployStrategy string

const (
	// DeployOnBranch builds pushes to the environment's branch.
	DeployOnBranch DeployStrategy = "branch"
	// DeployOnTag builds tag create events.
	DeployOnTag DeployStrategy = "tag"
)

type EnvironmentStatus string

const (
	EnvironmentStatusRegistered EnvironmentStatus = "registered"
	EnvironmentStatusBuilding   EnvironmentStatus = "building"
	EnvironmentStatusDeployed   EnvironmentStatus = "deployed"
	EnvironmentStatusFailed     EnvironmentStatus = "failed"
)

// Environment is a deploy target of a site. Every site gets a "production"
// environment tracking its default branch when it is registered.
type Environment struct {
	ID             uuid.UUID
	SiteID         uuid.UUID
	Name           string
	Strategy       DeployStrategy
	Branch         string
	URL            string
	Status         EnvironmentStatus
	CurrentBuildID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductionEnvironment is the environment name created at registration.
const ProductionEnvironment = "production"

// Matches reports whether ev should trigger a build of this environment.
func (e *Environment) Matches(ev *WebhookEvent) bool {
	switch e.Strategy {
	case DeployOnBranch:
		return ev.Branch != "" && ev.Branch == e.Branch
	case DeployOnTag:
		return ev.Tag != ""
	}
	return false
}

// DeployableEnvironment returns the first environment a webhook event should
// build, or nil when the event is not deployable for this site.
func DeployableEnvironment(envs []*Environment, ev *WebhookEvent) *Environment {
	for _, env := range envs {
		if env.Matches(ev) {
			return env
		}
	}
	return nil
}

// WebhookEvent is the deploy-relevant subset of a GitHub push or tag-create
// delivery.
type WebhookEvent struct {
	RepoGithubID int64
	Branch       string // short branch name, empty for tag events
	Tag          string // tag name, empty for branch pushes
	SHA          string
	Message      string
	Sender       string
}

// IsTag reports whether the event is a tag create rather than a branch push.
func (ev *WebhookEvent) IsTag() bool {
	return ev.Tag != ""
}

// Repo is a repository as reported by the GitHub API, used when listing what
// a user is allowed to register.
type Repo struct {
	GithubID      int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	URL           string `json:"url"`
	Owner         Owner  `json:"owner"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	Admin         bool   `json:"admin"`
}
