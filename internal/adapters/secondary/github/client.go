// Package github implements the GithubClient port on top of go-github.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v62/github"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
	"gopkg.in/yaml.v3"

	"franklin-api/internal/config"
	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

const (
	hookName      = "web"
	deployKeyName = "franklin"
)

type Client struct {
	clientID      string
	clientSecret  string
	webhookURL    string
	webhookSecret string
	deployKey     string
	apiBaseURL    string
	oauthEndpoint oauth2.Endpoint
}

func NewClient(cfg *config.GithubConfig, serverBaseURL string) ports.GithubClient {
	return &Client{
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		webhookURL:    strings.TrimRight(serverBaseURL, "/") + "/v1/deployed",
		webhookSecret: cfg.WebhookSecret,
		deployKey:     cfg.DeployKey,
		apiBaseURL:    cfg.APIBaseURL,
		oauthEndpoint: oauthgithub.Endpoint,
	}
}

// api returns a go-github client authenticated with the given user token.
func (c *Client) api(ctx context.Context, token string) *gogithub.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := gogithub.NewClient(tc)
	if c.apiBaseURL != "" {
		if u, err := client.BaseURL.Parse(c.apiBaseURL); err == nil {
			client.BaseURL = u
		}
	}
	return client
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	conf := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint:     c.oauthEndpoint,
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange oauth code: %w", err)
	}
	return tok.AccessToken, nil
}

func (c *Client) AuthenticatedUser(ctx context.Context, token string) (*domain.User, error) {
	ghUser, _, err := c.api(ctx, token).Users.Get(ctx, "")
	if err != nil {
		return nil, mapError("get authenticated user", err)
	}
	now := time.Now()
	return &domain.User{
		ID:          uuid.New(),
		GithubID:    ghUser.GetID(),
		Login:       ghUser.GetLogin(),
		Name:        ghUser.GetName(),
		Email:       ghUser.GetEmail(),
		AvatarURL:   ghUser.GetAvatarURL(),
		AccessToken: token,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Client) ListUserRepos(ctx context.Context, token string) ([]*domain.Repo, error) {
	api := c.api(ctx, token)
	opts := &gogithub.RepositoryListByAuthenticatedUserOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	var repos []*domain.Repo
	for {
		page, resp, err := api.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, mapError("list user repos", err)
		}
		for _, r := range page {
			repos = append(repos, &domain.Repo{
				GithubID: r.GetID(),
				Name:     r.GetName(),
				FullName: r.GetFullName(),
				URL:      r.GetHTMLURL(),
				Owner: domain.Owner{
					GithubID: r.GetOwner().GetID(),
					Login:    r.GetOwner().GetLogin(),
				},
				DefaultBranch: r.GetDefaultBranch(),
				Private:       r.GetPrivate(),
				Admin:         r.GetPermissions()["admin"],
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

func (c *Client) CreateWebhook(ctx context.Context, token, owner, name string) (int64, error) {
	api := c.api(ctx, token)
	hook := &gogithub.Hook{
		Name:   gogithub.String(hookName),
		Events: []string{"push", "create"},
		Active: gogithub.Bool(true),
		Config: &gogithub.HookConfig{
			URL:         gogithub.String(c.webhookURL),
			ContentType: gogithub.String("json"),
			Secret:      gogithub.String(c.webhookSecret),
		},
	}
	created, resp, err := api.Repositories.CreateHook(ctx, owner, name, hook)
	if err != nil {
		// 422 means the hook exists already; reuse it.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return c.findHook(ctx, api, owner, name)
		}
		return 0, mapError("create webhook", err)
	}
	return created.GetID(), nil
}

func (c *Client) findHook(ctx context.Context, api *gogithub.Client, owner, name string) (int64, error) {
	hooks, _, err := api.Repositories.ListHooks(ctx, owner, name, nil)
	if err != nil {
		return 0, mapError("list webhooks", err)
	}
	for _, h := range hooks {
		if h.GetConfig().GetURL() == c.webhookURL {
			return h.GetID(), nil
		}
	}
	return 0, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, token, owner, name string, hookID int64) error {
	if hookID == 0 {
		return nil
	}
	resp, err := c.api(ctx, token).Repositories.DeleteHook(ctx, owner, name, hookID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			log.WithFields(log.Fields{"repo": owner + "/" + name, "hook": hookID}).
				Warn("webhook already gone")
			return nil
		}
		return mapError("delete webhook", err)
	}
	return nil
}

func (c *Client) CreateDeployKey(ctx context.Context, token, owner, name string) (int64, error) {
	if c.deployKey == "" {
		return 0, nil
	}
	key := &gogithub.Key{
		Title:    gogithub.String(deployKeyName),
		Key:      gogithub.String(c.deployKey),
		ReadOnly: gogithub.Bool(true),
	}
	created, resp, err := c.api(ctx, token).Repositories.CreateKey(ctx, owner, name, key)
	if err != nil {
		// Key already installed on the repo.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return 0, nil
		}
		return 0, mapError("create deploy key", err)
	}
	return created.GetID(), nil
}

func (c *Client) DeleteDeployKey(ctx context.Context, token, owner, name string, keyID int64) error {
	if keyID == 0 {
		return nil
	}
	resp, err := c.api(ctx, token).Repositories.DeleteKey(ctx, owner, name, keyID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return mapError("delete deploy key", err)
	}
	return nil
}

func (c *Client) SiteConfig(ctx context.Context, token, owner, name, ref string) (*domain.SiteConfig, error) {
	var opts *gogithub.RepositoryContentGetOptions
	if ref != "" {
		opts = &gogithub.RepositoryContentGetOptions{Ref: ref}
	}
	content, _, resp, err := c.api(ctx, token).Repositories.GetContents(ctx, owner, name, domain.SiteConfigPath, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrConfigNotFound
		}
		return nil, mapError("get site config", err)
	}

	raw, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}
	cfg := &domain.SiteConfig{}
	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", domain.SiteConfigPath, err)
	}
	return cfg, nil
}

// mapError folds go-github errors into the domain's upstream sentinels while
// keeping the original message.
func mapError(op string, err error) error {
	if errResp, ok := err.(*gogithub.ErrorResponse); ok {
		if errResp.Response != nil && errResp.Response.StatusCode >= 500 {
			return fmt.Errorf("%s: %s: %w", op, errResp.Message, domain.ErrGithubUnavailable)
		}
		return fmt.Errorf("%s: %s: %w", op, errResp.Message, domain.ErrGithubRejected)
	}
	return fmt.Errorf("%s: %w", op, err)
}
