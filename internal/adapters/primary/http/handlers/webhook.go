package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gogithub "github.com/google/go-github/v62/github"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/adapters/primary/http/dto"
	"franklin-api/internal/core/domain"
)

// DeployHook receives GitHub webhook deliveries. Only GitHub may call this:
// payloads must carry a valid HMAC signature for the configured secret.
func (h *Handler) DeployHook(c *gin.Context) {
	payload, err := gogithub.ValidatePayload(c.Request, h.webhookSecret)
	if err != nil {
		log.WithError(err).Warn("webhook signature validation failed")
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
		return
	}

	eventType := gogithub.WebHookType(c.Request)
	event, err := gogithub.ParseWebHook(eventType, payload)
	if err != nil {
		log.WithError(err).Warn("received invalid github webhook message")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	switch ev := event.(type) {
	case *gogithub.PingEvent:
		c.Status(http.StatusNoContent)

	case *gogithub.PushEvent:
		h.handleDeployable(c, &domain.WebhookEvent{
			RepoGithubID: ev.GetRepo().GetID(),
			Branch:       shortRef(ev.GetRef()),
			SHA:          ev.GetHeadCommit().GetID(),
			Message:      ev.GetHeadCommit().GetMessage(),
			Sender:       ev.GetSender().GetLogin(),
		})

	case *gogithub.CreateEvent:
		if ev.GetRefType() != "tag" {
			c.Status(http.StatusOK)
			return
		}
		h.handleDeployable(c, &domain.WebhookEvent{
			RepoGithubID: ev.GetRepo().GetID(),
			Tag:          ev.GetRef(),
			Sender:       ev.GetSender().GetLogin(),
		})

	default:
		log.WithField("event", eventType).Warn("unsupported webhook event")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported event type"})
	}
}

func (h *Handler) handleDeployable(c *gin.Context, ev *domain.WebhookEvent) {
	build, err := h.buildSvc.HandleWebhookEvent(c.Request.Context(), ev)
	if err != nil {
		// Hooks for repos Franklin no longer manages are expected noise.
		if errors.Is(err, domain.ErrSiteNotFound) || errors.Is(err, domain.ErrSiteInactive) {
			c.Status(http.StatusOK)
			return
		}
		log.WithError(err).WithField("repo_github_id", ev.RepoGithubID).Error("webhook build failed")
		mapDomainError(c, err)
		return
	}
	if build == nil {
		// Known site, but nothing deploys from this ref.
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBuildResponse(build))
}

// shortRef strips the refs/heads/ prefix from a push ref.
func shortRef(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
