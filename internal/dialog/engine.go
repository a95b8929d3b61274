// Package dialog runs the three-stage outbound call conversation: intro,
// qualify, handoff. Each stage is a webhook handler in a stateless process;
// the full conversation state rides in the callback URL token, so any
// instance can serve any callback.
package dialog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go/twiml"

	"github.com/nikhilbhutani/coldcall/internal/callstate"
	"github.com/nikhilbhutani/coldcall/internal/phone"
	"github.com/nikhilbhutani/coldcall/internal/speech"
)

// Messenger is the send-a-text capability the engine needs for link handoff.
type Messenger interface {
	SendSMS(ctx context.Context, to, body, mediaURL string) error
}

// ClipProvider resolves a line of text to a playable audio URL; empty string
// means speak it with the provider's native voice instead.
type ClipProvider interface {
	EnsureClip(ctx context.Context, text, variant string) string
}

// Config holds the engine's fixed wiring.
type Config struct {
	// BaseURL is the public base of this service, used to build stage
	// callback URLs.
	BaseURL string

	// LinkURL is the link texted to interested callers.
	LinkURL string

	// LinkBody overrides the SMS body; "%s" is replaced by LinkURL when
	// present, otherwise the link is appended.
	LinkBody string

	// SMSDedupLimit bounds the per-call-id link dedup set.
	SMSDedupLimit int

	// GatherTimeoutSec is the provider-side speech gather timeout.
	GatherTimeoutSec int
}

// Engine drives the dialog. Stateless per call apart from the bounded SMS
// dedup set; safe for concurrent webhooks.
type Engine struct {
	clips ClipProvider // nil means native speech only
	sms   Messenger
	sent  *sentTracker
	cfg   Config
}

// NewEngine wires the engine. clips may be nil when synthesis is disabled.
func NewEngine(clips ClipProvider, sms Messenger, cfg Config) *Engine {
	if cfg.GatherTimeoutSec <= 0 {
		cfg.GatherTimeoutSec = 6
	}
	return &Engine{
		clips: clips,
		sms:   sms,
		sent:  newSentTracker(cfg.SMSDedupLimit),
		cfg:   cfg,
	}
}

// WebhookInput is one provider callback into a dialog stage.
type WebhookInput struct {
	Token   string // encoded state from the callback URL
	Speech  string // transcribed utterance; empty on gather timeout
	CallSID string
	From    string
	To      string
	Caller  string
	Called  string
}

// Intro handles the first stage: confirm the person is listening.
func (e *Engine) Intro(ctx context.Context, in WebhookInput) string {
	return e.run(ctx, in, "intro", e.introStage)
}

// Qualify handles the second stage: probe for buy/sell/invest/rent interest.
func (e *Engine) Qualify(ctx context.Context, in WebhookInput) string {
	return e.run(ctx, in, "qualify", e.qualifyStage)
}

// Handoff handles the final stage: offer a live transfer.
func (e *Engine) Handoff(ctx context.Context, in WebhookInput) string {
	return e.run(ctx, in, "handoff", e.handoffStage)
}

// InitialDocument builds the instruction document embedded in the outbound
// call: speak the intro lines, gather speech, and post back to the intro
// stage with the encoded state.
func (e *Engine) InitialDocument(ctx context.Context, state callstate.State) (string, error) {
	return twiml.Voice(e.reprompt(ctx, "intro", state, state.IntroLines...))
}

type stageFunc func(ctx context.Context, in WebhookInput, state callstate.State) []twiml.Element

// run decodes state, executes the stage, and renders the document. Any panic
// or render failure becomes a spoken apology plus hangup; a live call is
// never answered with an error status.
func (e *Engine) run(ctx context.Context, in WebhookInput, name string, stage stageFunc) (doc string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dialog stage panicked", "stage", name, "call_sid", in.CallSID, "panic", r)
			doc = apologyDocument
		}
	}()

	state := DefaultState()
	if decoded := callstate.Decode(in.Token); decoded != nil {
		state = *decoded
	}

	rendered, err := twiml.Voice(stage(ctx, in, state))
	if err != nil {
		slog.Error("render instruction document", "stage", name, "call_sid", in.CallSID, "error", err)
		return apologyDocument
	}
	return rendered
}

func (e *Engine) introStage(ctx context.Context, in WebhookInput, state callstate.State) []twiml.Element {
	said := strings.TrimSpace(in.Speech)

	switch {
	case said == "":
		if state.IntroNoSpeechCount >= 1 {
			e.sendLink(ctx, in)
			return e.closeWith(ctx, state, state.SMSOfferLine)
		}
		next := state
		next.IntroNoSpeechCount++
		return e.reprompt(ctx, "intro", next, state.IntroLines...)

	case speech.IsNegative(said) || speech.WantsLink(said):
		e.sendLink(ctx, in)
		return e.closeWith(ctx, state, state.DeclineLine)

	case speech.IsAffirmative(said) || speech.DetectIntent(said) != speech.IntentNone:
		next := state
		if intent := speech.DetectIntent(said); intent != speech.IntentNone && intent != next.PrefillIntent {
			next.PrefillIntent = intent
		}
		els := e.speakAll(ctx, state, state.PositiveAckLine, state.ValueBridgeLine)
		question := e.speakAll(ctx, state, state.QualifierQuestion)
		return append(els, e.gather("qualify", next, question))

	default:
		// Unclassified speech re-prompts without touching the counter, so a
		// talkative but unclear caller is not cut off like a silent one.
		return e.reprompt(ctx, "intro", state, state.IntroLines...)
	}
}

func (e *Engine) qualifyStage(ctx context.Context, in WebhookInput, state callstate.State) []twiml.Element {
	said := strings.TrimSpace(in.Speech)

	switch {
	case said == "":
		if state.QualifyNoSpeechCount >= 1 {
			e.sendLink(ctx, in)
			return e.closeWith(ctx, state, state.SMSOfferLine)
		}
		next := state
		next.QualifyNoSpeechCount++
		return e.reprompt(ctx, "qualify", next, state.QualifierQuestion)

	case speech.IsNegative(said) && !speech.WantsLink(said):
		e.sendLink(ctx, in)
		return e.closeWith(ctx, state, state.DeclineLine)

	default:
		// Affirmative, detected intent, or an explicit link request all count
		// as qualified.
		e.sendLink(ctx, in)

		intent := speech.DetectIntent(said)
		if intent == speech.IntentNone {
			intent = state.PrefillIntent
		}

		els := e.speakAll(ctx, state, QualifiedLine(intent), state.SMSOfferLine)
		if state.HandoffNumber == "" {
			return append(els, &twiml.VoiceHangup{})
		}
		prompt := e.speakAll(ctx, state, state.HandoffPromptLine)
		return append(els, e.gather("handoff", state, prompt))
	}
}

func (e *Engine) handoffStage(ctx context.Context, in WebhookInput, state callstate.State) []twiml.Element {
	if state.HandoffNumber == "" {
		return e.closeWith(ctx, state, handoffUnavailableLine)
	}

	said := strings.TrimSpace(in.Speech)

	switch {
	case said == "":
		return e.reprompt(ctx, "handoff", state, state.HandoffPromptLine)

	case speech.IsAffirmative(said):
		els := e.speakAll(ctx, state, state.ConnectLine)
		return append(els, &twiml.VoiceDial{Number: state.HandoffNumber})

	case speech.IsNegative(said) || speech.WantsLink(said):
		e.sendLink(ctx, in)
		return e.closeWith(ctx, state, state.SMSOfferLine)

	default:
		return e.reprompt(ctx, "handoff", state, state.HandoffPromptLine)
	}
}

// speak resolves one line to a play or say directive.
func (e *Engine) speak(ctx context.Context, state callstate.State, text string) twiml.Element {
	if e.clips != nil {
		if clipURL := e.clips.EnsureClip(ctx, text, state.Variant); clipURL != "" {
			return &twiml.VoicePlay{Url: clipURL}
		}
	}
	return &twiml.VoiceSay{Message: text}
}

// speakAll emits directives in line order; synthesis is awaited sequentially
// so the document order is deterministic.
func (e *Engine) speakAll(ctx context.Context, state callstate.State, lines ...string) []twiml.Element {
	els := make([]twiml.Element, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		els = append(els, e.speak(ctx, state, line))
	}
	return els
}

// reprompt speaks the lines inside a gather posting back to the same stage.
func (e *Engine) reprompt(ctx context.Context, stage string, state callstate.State, lines ...string) []twiml.Element {
	return []twiml.Element{e.gather(stage, state, e.speakAll(ctx, state, lines...))}
}

func (e *Engine) closeWith(ctx context.Context, state callstate.State, lines ...string) []twiml.Element {
	return append(e.speakAll(ctx, state, lines...), &twiml.VoiceHangup{})
}

func (e *Engine) gather(stage string, state callstate.State, inner []twiml.Element) twiml.Element {
	return &twiml.VoiceGather{
		Input:               "speech",
		Action:              e.callbackURL(stage, state),
		Method:              "POST",
		Timeout:             strconv.Itoa(e.cfg.GatherTimeoutSec),
		SpeechTimeout:       "auto",
		ActionOnEmptyResult: "true",
		InnerElements:       inner,
	}
}

// callbackURL re-encodes the (possibly updated) state into the next stage URL.
func (e *Engine) callbackURL(stage string, state callstate.State) string {
	q := url.Values{}
	q.Set("s", callstate.Encode(state))
	return e.cfg.BaseURL + "/voice/" + stage + "?" + q.Encode()
}

// sendLink texts the configured link to the human side of the call, at most
// once per call id.
func (e *Engine) sendLink(ctx context.Context, in WebhookInput) {
	to := e.humanNumber(in)
	if to == "" {
		slog.Warn("no destination for sms link", "call_sid", in.CallSID)
		return
	}
	if !e.sent.markSent(in.CallSID) {
		return
	}

	body := e.cfg.LinkBody
	switch {
	case body == "":
		body = "Here's the info we mentioned: " + e.cfg.LinkURL
	case strings.Contains(body, "%s"):
		body = strings.Replace(body, "%s", e.cfg.LinkURL, 1)
	default:
		body = body + " " + e.cfg.LinkURL
	}

	if err := e.sms.SendSMS(ctx, to, body, ""); err != nil {
		slog.Error("send sms link", "call_sid", in.CallSID, "to", to, "error", err)
	}
}

// humanNumber picks the callee side of an outbound call.
func (e *Engine) humanNumber(in WebhookInput) string {
	for _, raw := range []string{in.To, in.Called} {
		if n := phone.Normalize(raw); n != "" {
			return n
		}
	}
	return ""
}

// apologyDocument is pre-rendered so the catch-all path cannot itself fail.
const apologyDocument = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>` + apologyLine + `</Say><Hangup/></Response>`
