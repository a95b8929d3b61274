// Package dialer validates dial requests, pre-warms speech clips, and places
// outbound calls with the initial instruction document embedded.
package dialer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/coldcall/internal/callstate"
	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/phone"
	"github.com/nikhilbhutani/coldcall/internal/speech"
	"github.com/nikhilbhutani/coldcall/internal/telephony"
)

// Validation errors returned to the triggering caller; no call is placed.
var (
	ErrInvalidDestination   = errors.New("invalid destination number")
	ErrInvalidHandoffNumber = errors.New("invalid handoff number")
	ErrMissingOriginNumber  = errors.New("origin number not configured")
)

// Warmer pre-synthesizes clips ahead of call placement.
type Warmer interface {
	Warm(ctx context.Context, variant string, lines ...string)
}

// Config holds the dispatcher's fixed wiring.
type Config struct {
	FromNumber     string
	PublicBaseURL  string
	RingTimeoutSec int
}

// Dispatcher builds and places outbound calls.
type Dispatcher struct {
	tel    telephony.Client
	engine *dialog.Engine
	warmer Warmer // nil when synthesis is disabled
	cfg    Config
}

// New wires a dispatcher. warmer may be nil.
func New(tel telephony.Client, engine *dialog.Engine, warmer Warmer, cfg Config) *Dispatcher {
	return &Dispatcher{tel: tel, engine: engine, warmer: warmer, cfg: cfg}
}

// Request describes one dial: a destination plus script parameters. The
// script's HandoffNumber may be raw; it is normalized here.
type Request struct {
	To     string
	Script dialog.ScriptParams
}

// Result reports a placed call.
type Result struct {
	CallSID string `json:"call_sid"`
	To      string `json:"to"`
	Variant string `json:"variant"`
}

// Dial validates the request, builds the initial call state, warms the
// clips spoken in the first two stages, and places the call.
func (d *Dispatcher) Dial(ctx context.Context, req Request) (*Result, error) {
	if d.cfg.FromNumber == "" {
		return nil, ErrMissingOriginNumber
	}

	to := phone.Normalize(req.To)
	if to == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDestination, req.To)
	}

	params := req.Script
	if params.HandoffNumber != "" {
		normalized := phone.Normalize(params.HandoffNumber)
		if normalized == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHandoffNumber, params.HandoffNumber)
		}
		params.HandoffNumber = normalized
	}

	state := dialog.BuildState(params)

	if d.warmer != nil {
		d.warmer.Warm(ctx, state.Variant, warmLines(state)...)
	}

	doc, err := d.engine.InitialDocument(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("build initial document: %w", err)
	}

	callSID, err := d.tel.PlaceCall(ctx, telephony.CallParams{
		To:             to,
		From:           d.cfg.FromNumber,
		TwiML:          doc,
		StatusCallback: d.cfg.PublicBaseURL + "/voice/status",
		Timeout:        d.cfg.RingTimeoutSec,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch call: %w", err)
	}

	slog.Info("call placed", "call_sid", callSID, "to", to, "variant", state.Variant)
	return &Result{CallSID: callSID, To: to, Variant: state.Variant}, nil
}

// warmLines lists everything plausibly spoken in the intro and qualify
// stages.
func warmLines(s callstate.State) []string {
	lines := append([]string{}, s.IntroLines...)
	lines = append(lines,
		s.PositiveAckLine,
		s.ValueBridgeLine,
		s.QualifierQuestion,
		s.SMSOfferLine,
		s.DeclineLine,
	)
	for _, intent := range []string{speech.IntentBuy, speech.IntentSell, speech.IntentInvest, speech.IntentRent, speech.IntentNone} {
		lines = append(lines, dialog.QualifiedLine(intent))
	}
	if s.HandoffNumber != "" {
		lines = append(lines, s.HandoffPromptLine)
	}
	return lines
}
