package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/domain"
)

const (
	// LocalCompanyID is the key to retrieve company_id from context
	LocalCompanyID = "company_id"
	// LocalCompany is the key to retrieve the full company from context
	LocalCompany = "company"
)

// CompanyRepository interface for company lookup
type CompanyRepository interface {
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Company, error)
}

// Auth creates an authentication middleware using API Key. A non-nil lastUsed
// worker gets the key hash of every authenticated request for async stamping.
func Auth(companyRepo CompanyRepository, lastUsed *LastUsedWorker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractBearerToken(c)
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		hash := hashAPIKey(apiKey)

		// Any error (not found or DB error) returns 401 so callers cannot
		// probe whether a key exists
		company, err := companyRepo.GetByAPIKeyHash(c.Context(), hash)
		if err != nil {
			return domain.ErrUnauthorized
		}

		if !company.IsActive {
			return domain.ErrUnauthorized
		}

		if lastUsed != nil {
			lastUsed.Enqueue(hash)
		}

		c.Locals(LocalCompanyID, company.ID)
		c.Locals(LocalCompany, company)

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// hashAPIKey generates SHA-256 hash of API Key
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetCompanyID retrieves company_id from Fiber context
func GetCompanyID(c *fiber.Ctx) (uuid.UUID, error) {
	companyID, ok := c.Locals(LocalCompanyID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return companyID, nil
}

// GetCompany retrieves full company from Fiber context
func GetCompany(c *fiber.Ctx) (*domain.Company, error) {
	company, ok := c.Locals(LocalCompany).(*domain.Company)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return company, nil
}
