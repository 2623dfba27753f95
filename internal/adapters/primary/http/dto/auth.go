package dto

import "franklin-api/internal/core/domain"

type AuthTokenRequest struct {
	Code string `json:"code" binding:"required"`
	// ClientID and RedirectURI are sent by the dashboard; the server's own
	// OAuth credentials are authoritative so both are accepted and ignored.
	ClientID    string `json:"clientId"`
	RedirectURI string `json:"redirectUri"`
}

type UserResponse struct {
	ID        string `json:"id"`
	GithubID  int64  `json:"github_id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AuthTokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func ToAuthTokenResponse(user *domain.User) AuthTokenResponse {
	return AuthTokenResponse{
		Token: user.AccessToken,
		User: UserResponse{
			ID:        user.ID.String(),
			GithubID:  user.GithubID,
			Login:     user.Login,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		},
	}
}
