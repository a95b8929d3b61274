package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/coldcall/internal/dialer"
	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/queue"
)

// DialWorker places one outbound call per lead task.
type DialWorker struct {
	dispatcher *dialer.Dispatcher
}

func NewDialWorker(d *dialer.Dispatcher) *DialWorker {
	return &DialWorker{dispatcher: d}
}

func (w *DialWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.LeadDialPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	res, err := w.dispatcher.Dial(ctx, dialer.Request{
		To: payload.Phone,
		Script: dialog.ScriptParams{
			FirstName:     payload.FirstName,
			Variant:       payload.Variant,
			HandoffNumber: payload.HandoffNumber,
		},
	})
	if err != nil {
		// Validation failures will never succeed on retry; record and move on
		// so the rest of the campaign keeps dialing.
		if errors.Is(err, dialer.ErrInvalidDestination) ||
			errors.Is(err, dialer.ErrInvalidHandoffNumber) ||
			errors.Is(err, dialer.ErrMissingOriginNumber) {
			slog.Warn("skipping undialable lead",
				"campaign_id", payload.CampaignID,
				"phone", payload.Phone,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("dial lead: %w", err)
	}

	slog.Info("lead dialed",
		"campaign_id", payload.CampaignID,
		"call_sid", res.CallSID,
		"to", res.To,
	)
	return nil
}
