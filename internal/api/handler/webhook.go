package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/domain"
	"github.com/crewforge/checkpoint/internal/webhook"
)

// WebhookStore interface for webhook subscription management
type WebhookStore interface {
	Create(ctx context.Context, w *webhook.Webhook) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*webhook.Webhook, error)
	Delete(ctx context.Context, companyID, webhookID uuid.UUID) error
}

// WebhookHandler manages a company's webhook subscriptions
type WebhookHandler struct {
	store WebhookStore
}

func NewWebhookHandler(store WebhookStore) *WebhookHandler {
	return &WebhookHandler{store: store}
}

// CreateWebhookRequest request body for registering a webhook
type CreateWebhookRequest struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// CreateWebhookResponse includes the signing secret, shown only at creation
type CreateWebhookResponse struct {
	Webhook *webhook.Webhook `json:"webhook"`
	Secret  string           `json:"secret"`
}

// WebhooksResponse response for the list endpoint
type WebhooksResponse struct {
	Webhooks []*webhook.Webhook `json:"webhooks"`
	Count    int                `json:"count"`
}

var knownEvents = map[string]bool{
	webhook.EventAttendanceRecorded:   true,
	webhook.EventVerificationComplete: true,
}

// Create POST /v1/webhooks - register a webhook subscription
func (h *WebhookHandler) Create(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	var req CreateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	if err := validateWebhookRequest(&req); err != nil {
		return err
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	w := &webhook.Webhook{
		CompanyID: companyID,
		Name:      req.Name,
		URL:       req.URL,
		Secret:    secret,
		Events:    req.Events,
		Enabled:   true,
	}

	if err := h.store.Create(c.Context(), w); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CreateWebhookResponse{
		Webhook: w,
		Secret:  secret,
	})
}

// List GET /v1/webhooks - the company's webhook subscriptions
func (h *WebhookHandler) List(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	webhooks, err := h.store.ListByCompany(c.Context(), companyID)
	if err != nil {
		return err
	}

	if webhooks == nil {
		webhooks = []*webhook.Webhook{}
	}

	return c.JSON(WebhooksResponse{
		Webhooks: webhooks,
		Count:    len(webhooks),
	})
}

// Delete DELETE /v1/webhooks/:id - remove a webhook subscription
func (h *WebhookHandler) Delete(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("id must be a valid UUID"))
	}

	if err := h.store.Delete(c.Context(), companyID, id); err != nil {
		return domain.ErrNotFound.WithError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func validateWebhookRequest(req *CreateWebhookRequest) error {
	if req.Name == "" {
		return domain.ErrValidationFailed.WithError(errors.New("name is required"))
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return domain.ErrValidationFailed.WithError(errors.New("url must be an http or https URL"))
	}
	if len(req.Events) == 0 {
		return domain.ErrValidationFailed.WithError(errors.New("at least one event is required"))
	}
	for _, ev := range req.Events {
		if !knownEvents[ev] {
			return domain.ErrValidationFailed.WithError(fmt.Errorf("unknown event type: %s", ev))
		}
	}
	return nil
}

func generateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(buf), nil
}
