package dto

import (
	"time"

	"franklin-api/internal/core/domain"
)

type OwnerPayload struct {
	ID   int64  `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type RegisterSiteRequest struct {
	Name          string       `json:"name" binding:"required"`
	GithubID      int64        `json:"github_id" binding:"required"`
	Owner         OwnerPayload `json:"owner" binding:"required"`
	DefaultBranch string       `json:"default_branch"`
}

type EnvironmentResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Strategy       string     `json:"strategy"`
	Branch         string     `json:"branch,omitempty"`
	URL            string     `json:"url,omitempty"`
	Status         string     `json:"status"`
	CurrentBuildID *string    `json:"current_build_id,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type SiteResponse struct {
	ID            string                `json:"id"`
	GithubID      int64                 `json:"github_id"`
	Name          string                `json:"name"`
	FullName      string                `json:"full_name"`
	Owner         OwnerPayload          `json:"owner"`
	DefaultBranch string                `json:"default_branch"`
	Active        bool                  `json:"active"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Environments  []EnvironmentResponse `json:"environments,omitempty"`
}

type ListSitesResponse struct {
	Items      []SiteResponse `json:"items"`
	Total      int            `json:"total"`
	PageSize   int            `json:"page_size"`
	NextOffset int            `json:"next_offset"`
}

func ToSiteResponse(site *domain.Site, envs []*domain.Environment) SiteResponse {
	resp := SiteResponse{
		ID:       site.ID.String(),
		GithubID: site.GithubID,
		Name:     site.Name,
		FullName: site.FullName(),
		Owner: OwnerPayload{
			ID:   site.Owner.GithubID,
			Name: site.Owner.Login,
		},
		DefaultBranch: site.DefaultBranch,
		Active:        site.Active,
		CreatedAt:     site.CreatedAt,
		UpdatedAt:     site.UpdatedAt,
	}
	for _, env := range envs {
		resp.Environments = append(resp.Environments, ToEnvironmentResponse(env))
	}
	return resp
}

func ToEnvironmentResponse(env *domain.Environment) EnvironmentResponse {
	resp := EnvironmentResponse{
		ID:        env.ID.String(),
		Name:      env.Name,
		Strategy:  string(env.Strategy),
		Branch:    env.Branch,
		URL:       env.URL,
		Status:    string(env.Status),
		UpdatedAt: env.UpdatedAt,
	}
	if env.CurrentBuildID != nil {
		id := env.CurrentBuildID.String()
		resp.CurrentBuildID = &id
	}
	return resp
}

type RepoResponse struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	FullName      string       `json:"full_name"`
	URL           string       `json:"url"`
	Owner         OwnerPayload `json:"owner"`
	DefaultBranch string       `json:"default_branch"`
	Private       bool         `json:"private"`
}

func ToRepoResponse(repo *domain.Repo) RepoResponse {
	return RepoResponse{
		ID:       repo.GithubID,
		Name:     repo.Name,
		FullName: repo.FullName,
		URL:      repo.URL,
		Owner: OwnerPayload{
			ID:   repo.Owner.GithubID,
			Name: repo.Owner.Login,
		},
		DefaultBranch: repo.DefaultBranch,
		Private:       repo.Private,
	}
}
