package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/coldcall/internal/dialer"
	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/leads"
	"github.com/nikhilbhutani/coldcall/internal/queue"
)

type CallsHandler struct {
	dispatcher *dialer.Dispatcher
	queue      *queue.Client
}

func NewCallsHandler(d *dialer.Dispatcher, qc *queue.Client) *CallsHandler {
	return &CallsHandler{dispatcher: d, queue: qc}
}

type dialRequest struct {
	To            string   `json:"to"`
	FirstName     string   `json:"first_name,omitempty"`
	Variant       string   `json:"variant,omitempty"`
	HandoffNumber string   `json:"handoff_number,omitempty"`
	IntroLines    []string `json:"intro_lines,omitempty"`
	PositiveAck   string   `json:"positive_ack,omitempty"`
	ValueBridge   string   `json:"value_bridge,omitempty"`
	Qualifier     string   `json:"qualifier,omitempty"`
	SMSOffer      string   `json:"sms_offer,omitempty"`
	Decline       string   `json:"decline,omitempty"`
	HandoffPrompt string   `json:"handoff_prompt,omitempty"`
	Connect       string   `json:"connect,omitempty"`
}

func (r dialRequest) scriptParams() dialog.ScriptParams {
	return dialog.ScriptParams{
		FirstName:         r.FirstName,
		Variant:           r.Variant,
		HandoffNumber:     r.HandoffNumber,
		IntroLines:        r.IntroLines,
		PositiveAckLine:   r.PositiveAck,
		ValueBridgeLine:   r.ValueBridge,
		QualifierQuestion: r.Qualifier,
		SMSOfferLine:      r.SMSOffer,
		DeclineLine:       r.Decline,
		HandoffPromptLine: r.HandoffPrompt,
		ConnectLine:       r.Connect,
	}
}

// Dial places a single outbound call.
func (h *CallsHandler) Dial(w http.ResponseWriter, r *http.Request) {
	var req dialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.To == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to required"})
		return
	}

	result, err := h.dispatcher.Dial(r.Context(), dialer.Request{
		To:     req.To,
		Script: req.scriptParams(),
	})
	if err != nil {
		if errors.Is(err, dialer.ErrInvalidDestination) ||
			errors.Is(err, dialer.ErrInvalidHandoffNumber) ||
			errors.Is(err, dialer.ErrMissingOriginNumber) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type campaignRequest struct {
	Leads         []leads.Lead `json:"leads"`
	Variant       string       `json:"variant,omitempty"`
	HandoffNumber string       `json:"handoff_number,omitempty"`
}

type campaignResponse struct {
	CampaignID string `json:"campaign_id"`
	Enqueued   int    `json:"enqueued"`
	Skipped    int    `json:"skipped"`
}

// Campaign fans a lead batch out into one dial task per lead. A lead that
// fails to enqueue is counted and skipped; the rest of the batch proceeds.
func (h *CallsHandler) Campaign(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "bulk dialing not configured"})
		return
	}

	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Leads) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "leads required"})
		return
	}

	batch, skipped := leads.NormalizeBatch(req.Leads)
	campaignID := uuid.NewString()

	enqueued := 0
	for _, lead := range batch {
		err := h.queue.EnqueueLeadDial(queue.LeadDialPayload{
			CampaignID:    campaignID,
			Phone:         lead.Phone,
			FirstName:     lead.FirstName,
			Context:       lead.Context,
			Variant:       req.Variant,
			HandoffNumber: req.HandoffNumber,
		})
		if err != nil {
			slog.Error("enqueue lead dial", "campaign_id", campaignID, "phone", lead.Phone, "error", err)
			skipped++
			continue
		}
		enqueued++
	}

	slog.Info("campaign accepted", "campaign_id", campaignID, "enqueued", enqueued, "skipped", skipped)
	writeJSON(w, http.StatusAccepted, campaignResponse{
		CampaignID: campaignID,
		Enqueued:   enqueued,
		Skipped:    skipped,
	})
}
