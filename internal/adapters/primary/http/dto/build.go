package dto

import (
	"time"

	"franklin-api/internal/core/domain"
)

type BuildResponse struct {
	ID            string     `json:"id"`
	SiteID        string     `json:"site_id"`
	EnvironmentID string     `json:"environment_id"`
	Branch        string     `json:"branch,omitempty"`
	Tag           string     `json:"tag,omitempty"`
	GitHash       string     `json:"git_hash"`
	Path          string     `json:"path"`
	Status        string     `json:"status"`
	Detail        string     `json:"detail,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type ListBuildsResponse struct {
	Items      []BuildResponse `json:"items"`
	Total      int             `json:"total"`
	PageSize   int             `json:"page_size"`
	NextOffset int             `json:"next_offset"`
}

type UpdateBuildStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Detail string `json:"detail"`
}

func ToBuildResponse(build *domain.Build) BuildResponse {
	return BuildResponse{
		ID:            build.ID.String(),
		SiteID:        build.SiteID.String(),
		EnvironmentID: build.EnvironmentID.String(),
		Branch:        build.Branch,
		Tag:           build.Tag,
		GitHash:       build.GitHash,
		Path:          build.Path,
		Status:        string(build.Status),
		Detail:        build.Detail,
		CreatedAt:     build.CreatedAt,
		StartedAt:     build.StartedAt,
		FinishedAt:    build.FinishedAt,
	}
}
