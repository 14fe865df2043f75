package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// EnrollmentStepData represents one step of an enrollment session
type EnrollmentStepData struct {
	Name   string `json:"name" example:"capture"`
	Status string `json:"status" example:"completed"`
	Error  string `json:"error,omitempty" example:""`
}

// EnrollmentSessionResponse represents the final snapshot of an enrollment session
type EnrollmentSessionResponse struct {
	ID           string               `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WorkerID     string               `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Type         string               `json:"type" example:"face"`
	Mode         string               `json:"mode" example:"cross_device"`
	Steps        []EnrollmentStepData `json:"steps"`
	Succeeded    bool                 `json:"succeeded" example:"true"`
	Warning      string               `json:"warning,omitempty"`
	TemplateID   string               `json:"template_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	CredentialID string               `json:"credential_id,omitempty" example:"cred-abc123"`
}

// EnrollRequest represents the request body for enrollment
type EnrollRequest struct {
	WorkerID       string `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Type           string `json:"type" example:"face"`
	Mode           string `json:"mode" example:"cross_device"`
	Frame          string `json:"frame,omitempty" example:"base64-encoded-bytes"`
	DeviceID       string `json:"device_id,omitempty" example:"tablet-gate-7"`
	DevicePlatform string `json:"device_platform,omitempty" example:"android"`
}

// VerifyRequest represents the request body for verification
type VerifyRequest struct {
	WorkerID string `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Method   string `json:"method" example:"cross_device"`
	Type     string `json:"type,omitempty" example:"face"`
	Frame    string `json:"frame,omitempty" example:"base64-encoded-bytes"`
	DeviceID string `json:"device_id,omitempty" example:"tablet-gate-7"`
}

// VerificationResultResponse represents a verification outcome
type VerificationResultResponse struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WorkerID   string  `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Method     string  `json:"method" example:"cross_device"`
	Type       string  `json:"type" example:"face"`
	Verified   bool    `json:"verified" example:"true"`
	MatchScore float64 `json:"match_score,omitempty" example:"0.93"`
	VerifiedAt string  `json:"verified_at" example:"2025-01-01T08:00:00Z"`
}

// ScanRequestBody represents the request body for an attendance scan
type ScanRequestBody struct {
	WorkerID       string `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Code           string `json:"code" example:"qr-gate-7-token"`
	VerificationID string `json:"verification_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DeviceInfo     string `json:"device_info,omitempty" example:"tablet-gate-7"`
	Notes          string `json:"notes,omitempty"`
}

// AttendanceEventData represents one attendance event
type AttendanceEventData struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WorkerID  string `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	EventType string `json:"event_type" example:"clock_in"`
	EventTime string `json:"event_time" example:"2025-01-01T08:00:00Z"`
}

// ClockStatusData represents a worker's clock status
type ClockStatusData struct {
	WorkerID      string `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	State         string `json:"state" example:"clocked_in"`
	LastEventType string `json:"last_event_type" example:"clock_in"`
	LastEventTime string `json:"last_event_time" example:"2025-01-01T08:00:00Z"`
}

// ScanResultResponse represents the result of a recorded scan
type ScanResultResponse struct {
	Event   AttendanceEventData `json:"event"`
	Status  ClockStatusData     `json:"status"`
	Summary string              `json:"summary" example:"Ana Souza clocked in at Gate 7 (now clocked_in)"`
}

// EventsListResponse wraps a worker's recent events
type EventsListResponse struct {
	Events []AttendanceEventData `json:"events"`
	Count  int                   `json:"count" example:"2"`
}

// TemplateData represents a biometric template in responses
type TemplateData struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WorkerID   string  `json:"worker_id" example:"9b2f4d1e-7c3a-4e58-9f10-2d6b8a7c5e41"`
	Type       string  `json:"type" example:"face"`
	Quality    float64 `json:"quality" example:"87.5"`
	DeviceID   string  `json:"device_id" example:"tablet-gate-7"`
	IsActive   bool    `json:"is_active" example:"true"`
	CapturedAt string  `json:"captured_at" example:"2025-01-01T08:00:00Z"`
}

// TemplatesListResponse wraps a worker's templates
type TemplatesListResponse struct {
	Templates []TemplateData `json:"templates"`
	Count     int            `json:"count" example:"1"`
}

// WebhookData represents a webhook subscription in responses
type WebhookData struct {
	ID      string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name    string   `json:"name" example:"payroll"`
	URL     string   `json:"url" example:"https://example.com/hooks/checkpoint"`
	Events  []string `json:"events" example:"attendance.recorded"`
	Enabled bool     `json:"enabled" example:"true"`
}

// CreateWebhookBody represents the request body for registering a webhook
type CreateWebhookBody struct {
	Name   string   `json:"name" example:"payroll"`
	URL    string   `json:"url" example:"https://example.com/hooks/checkpoint"`
	Events []string `json:"events" example:"attendance.recorded"`
}

// CreateWebhookResult wraps the created webhook and its signing secret
type CreateWebhookResult struct {
	Webhook WebhookData `json:"webhook"`
	Secret  string      `json:"secret" example:"whsec_4f6a..."`
}

// WebhooksListResponse wraps a company's webhooks
type WebhooksListResponse struct {
	Webhooks []WebhookData `json:"webhooks"`
	Count    int           `json:"count" example:"1"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Checkpoint Attendance API",
		Version:     "v1.0.0",
		Description: "On-site identity verification and attendance tracking for construction crews, with biometric enrollment and QR-based clock events",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/enrollments - Enroll a worker
		endpoint.New(
			endpoint.POST,
			"/enrollments",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll a worker"),
			endpoint.WithDescription("Runs one enrollment session: device check, capture, storage and self test. Cross-device mode stores a biometric template; device-bound mode registers a device credential."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollmentSessionResponse{}, "201", "Enrollment completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "DEVICE_UNSUPPORTED", Message: "Device cannot capture the requested biometric"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CAPTURE_FAILED", Message: "Sample capture failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CREDENTIAL_EXISTS", Message: "Device credential already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/verifications - Verify a worker
		endpoint.New(
			endpoint.POST,
			"/verifications",
			endpoint.WithTags("Verification"),
			endpoint.WithSummary("Verify a worker's identity"),
			endpoint.WithDescription("Runs one verification attempt over the device-bound or cross-device path. A 200 always means verification ran; the verified field says whether it passed."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationResultResponse{}, "200", "Verification completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_ENROLLMENT", Message: "Worker has no active enrollment"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "DEVICE_UNSUPPORTED", Message: "Device cannot capture the requested biometric"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "CAPTURE_FAILED", Message: "Sample capture failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/attendance/scans - Record a scan
		endpoint.New(
			endpoint.POST,
			"/attendance/scans",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Record a verified QR scan"),
			endpoint.WithDescription("Resolves the scanned code, checks the referenced verification server side, computes the clock transition and appends an attendance event"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScanResultResponse{}, "201", "Scan recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_CODE", Message: "Unknown, inactive or expired code"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VERIFICATION_REQUIRED", Message: "Scan requires a recent passed verification"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "NO_MATCH", Message: "The referenced verification did not pass"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DUPLICATE_SCAN", Message: "An identical scan was recorded moments ago"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "A concurrent scan won the status update"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/attendance/status/:worker_id - Clock status
		endpoint.New(
			endpoint.GET,
			"/attendance/status/{worker_id}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Get a worker's clock status"),
			endpoint.WithDescription("Returns the current clock status, re-derived from the event log when the cached row is missing"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("worker_id", parameter.Path, parameter.WithDescription("Worker UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClockStatusData{}, "200", "Status retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/attendance/events/:worker_id - Recent events
		endpoint.New(
			endpoint.GET,
			"/attendance/events/{worker_id}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List a worker's recent events"),
			endpoint.WithDescription("Returns a worker's most recent attendance events, newest first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("worker_id", parameter.Path, parameter.WithDescription("Worker UUID")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of events (default: 50, max: 200)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EventsListResponse{}, "200", "Events retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid limit"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/templates/:worker_id - List templates
		endpoint.New(
			endpoint.GET,
			"/templates/{worker_id}",
			endpoint.WithTags("Templates"),
			endpoint.WithSummary("List a worker's biometric templates"),
			endpoint.WithDescription("Returns a worker's templates, newest first. Active templates only unless include_inactive is set."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("worker_id", parameter.Path, parameter.WithDescription("Worker UUID")),
				parameter.StrParam("type", parameter.Query, parameter.WithDescription("Filter by biometric type: fingerprint or face")),
				parameter.StrParam("include_inactive", parameter.Query, parameter.WithDescription("Include deactivated templates (default: false)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TemplatesListResponse{}, "200", "Templates retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid type"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "WORKER_NOT_FOUND", Message: "Worker not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/templates/:id - Deactivate template
		endpoint.New(
			endpoint.DELETE,
			"/templates/{id}",
			endpoint.WithTags("Templates"),
			endpoint.WithSummary("Deactivate a biometric template"),
			endpoint.WithDescription("Marks a template inactive. Templates are never hard-deleted."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Template UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Template deactivated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "Template not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/webhooks - Register a webhook
		endpoint.New(
			endpoint.POST,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Register a webhook subscription"),
			endpoint.WithDescription("Subscribes a company endpoint to attendance.recorded and verification.completed events. The signing secret is returned once at creation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CreateWebhookResult{}, "201", "Webhook registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/webhooks - List webhooks
		endpoint.New(
			endpoint.GET,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("List webhook subscriptions"),
			endpoint.WithDescription("Returns the company's webhook subscriptions, newest first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhooksListResponse{}, "200", "Webhooks retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/webhooks/:id - Remove a webhook
		endpoint.New(
			endpoint.DELETE,
			"/webhooks/{id}",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Remove a webhook subscription"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Webhook UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Webhook removed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "Webhook not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
