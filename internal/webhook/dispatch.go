package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/domain"
)

// Dispatcher fans an event out to every subscribed webhook of a company. All
// delivery happens off the request path; failures end up on the retry queue.
type Dispatcher struct {
	service *Service
	logger  *slog.Logger
}

func NewDispatcher(service *Service, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{service: service, logger: logger}
}

func (d *Dispatcher) VerificationCompleted(companyID uuid.UUID, result *domain.VerificationResult) {
	d.dispatch(companyID, EventVerificationComplete, result)
}

func (d *Dispatcher) AttendanceRecorded(companyID uuid.UUID, event *domain.AttendanceEvent, status *domain.WorkerClockStatus) {
	d.dispatch(companyID, EventAttendanceRecorded, map[string]interface{}{
		"event":  event,
		"status": status,
	})
}

func (d *Dispatcher) dispatch(companyID uuid.UUID, eventType string, data interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		webhooks, err := d.service.ListByEvent(ctx, companyID, eventType)
		if err != nil {
			d.logger.Error("failed to list webhooks for event",
				"company_id", companyID, "event_type", eventType, "error", err)
			return
		}

		payload := EventPayload{
			Type:      eventType,
			Data:      data,
			CompanyID: companyID,
			Timestamp: time.Now().UTC(),
		}

		for _, w := range webhooks {
			if err := d.service.Send(ctx, w, payload); err != nil {
				d.logger.Error("webhook delivery failed",
					"webhook_id", w.ID, "event_type", eventType, "error", err)
			}
		}
	}()
}
