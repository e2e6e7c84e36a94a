package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/Pratham722007/Hackout-25/internal/dto"
	"github.com/Pratham722007/Hackout-25/internal/identity"
	"github.com/gofiber/fiber/v2"
)

type clerkEmail struct {
	EmailAddress string `json:"email_address"`
}

type clerkUserData struct {
	ID             string       `json:"id"`
	Username       string       `json:"username"`
	EmailAddresses []clerkEmail `json:"email_addresses"`
}

type clerkEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ClerkWebhookHandler keeps the local user table in sync with the external
// identity provider.
type ClerkWebhookHandler struct {
	resolver *identity.Resolver
	secret   string
}

func NewClerkWebhookHandler(resolver *identity.Resolver, secret string) *ClerkWebhookHandler {
	return &ClerkWebhookHandler{resolver: resolver, secret: secret}
}

// HandleEvent processes user.created, user.updated and user.deleted events.
// The request body is authenticated with an HMAC signature header.
func (h *ClerkWebhookHandler) HandleEvent(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(c.Body())
	expected := hex.EncodeToString(mac.Sum(nil))
	signature := c.Get("X-Webhook-Signature")
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	var event clerkEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	var data clerkUserData
	if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user payload",
		})
	}

	var err error
	switch event.Type {
	case "user.created", "user.updated":
		email := ""
		if len(data.EmailAddresses) > 0 {
			email = data.EmailAddresses[0].EmailAddress
		}
		_, err = h.resolver.Upsert(data.ID, email, data.Username)
	case "user.deleted":
		err = h.resolver.Delete(data.ID)
	default:
		// ignore events we don't consume
		return c.JSON(fiber.Map{"received": true})
	}

	if err != nil {
		slog.Error("user sync failed", "event_type", event.Type, "clerk_user_id", data.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("user sync processed", "event_type", event.Type, "clerk_user_id", data.ID)
	return c.JSON(fiber.Map{"received": true})
}
