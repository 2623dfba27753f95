package domain

import "errors"

// Not found errors
var (
	ErrSiteNotFound        = errors.New("site not found")
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrBuildNotFound       = errors.New("build not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrConfigNotFound      = errors.New("no franklin config in repository")
)

// Conflict errors
var (
	ErrSiteExists        = errors.New("site is already registered")
	ErrEnvironmentExists = errors.New("environment with this name already exists for this site")
)

// Validation errors
var (
	ErrInvalidSiteName    = errors.New("repository name and owner are required")
	ErrInvalidGithubID    = errors.New("github id is required")
	ErrInvalidBuildStatus = errors.New("invalid build status")
	ErrInvalidOAuthCode   = errors.New("authorization code is required")
)

// Permission errors
var (
	ErrRepoAccessDenied = errors.New("current user does not have permission for this repo")
	ErrMissingToken     = errors.New("authentication token is required")
	ErrInvalidToken     = errors.New("authentication token is not valid")
)

// Business rule errors
var (
	ErrBuildFinished = errors.New("build already reached a terminal status")
	ErrSiteInactive  = errors.New("site is not active")
	ErrQueueFull     = errors.New("build queue is full")
)

// Upstream errors
var (
	ErrGithubRejected    = errors.New("request rejected by github")
	ErrGithubUnavailable = errors.New("github is unavailable")
)
