package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/synth"
)

// LiveSynthesizer produces audio on demand for the live-proxy clip endpoint.
type LiveSynthesizer interface {
	Synthesize(ctx context.Context, text, variant string) (*synth.Result, error)
}

// VoiceHandler owns the telephony-facing surface: the three dialog stage
// webhooks, the status callback, and the live clip proxy.
type VoiceHandler struct {
	engine *dialog.Engine
	live   LiveSynthesizer // nil when synthesis is disabled
}

func NewVoiceHandler(engine *dialog.Engine, live LiveSynthesizer) *VoiceHandler {
	return &VoiceHandler{engine: engine, live: live}
}

// Intro, Qualify, and Handoff never return an error status: whatever happens
// inside the engine, the caller hears a document.

func (h *VoiceHandler) Intro(w http.ResponseWriter, r *http.Request) {
	writeTwiML(w, h.engine.Intro(r.Context(), webhookInput(r)))
}

func (h *VoiceHandler) Qualify(w http.ResponseWriter, r *http.Request) {
	writeTwiML(w, h.engine.Qualify(r.Context(), webhookInput(r)))
}

func (h *VoiceHandler) Handoff(w http.ResponseWriter, r *http.Request) {
	writeTwiML(w, h.engine.Handoff(r.Context(), webhookInput(r)))
}

// Status receives call lifecycle events. Log-only; call outcomes are not
// persisted.
func (h *VoiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	slog.Info("call status",
		"call_sid", r.PostFormValue("CallSid"),
		"status", r.PostFormValue("CallStatus"),
		"duration", r.PostFormValue("CallDuration"),
	)
	w.WriteHeader(http.StatusOK)
}

// Clip synthesizes a line on demand and streams the audio. This is the
// degraded-mode URL the cache hands out when a clip could not be produced
// ahead of time.
func (h *VoiceHandler) Clip(w http.ResponseWriter, r *http.Request) {
	if h.live == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "synthesis not configured"})
		return
	}

	text := r.URL.Query().Get("text")
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}
	variant := r.URL.Query().Get("variant")

	result, err := h.live.Synthesize(r.Context(), text, variant)
	if err != nil {
		slog.Error("live clip synthesis failed", "variant", variant, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "synthesis unavailable"})
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Audio)
}

func webhookInput(r *http.Request) dialog.WebhookInput {
	r.ParseForm()
	return dialog.WebhookInput{
		Token:   r.URL.Query().Get("s"),
		Speech:  r.PostFormValue("SpeechResult"),
		CallSID: r.PostFormValue("CallSid"),
		From:    r.PostFormValue("From"),
		To:      r.PostFormValue("To"),
		Caller:  r.PostFormValue("Caller"),
		Called:  r.PostFormValue("Called"),
	}
}

func writeTwiML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
