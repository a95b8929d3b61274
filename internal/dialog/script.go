package dialog

import (
	"strings"

	"github.com/nikhilbhutani/coldcall/internal/callstate"
	"github.com/nikhilbhutani/coldcall/internal/speech"
)

// DefaultVariant is the voice preset used when a dial request names none.
const DefaultVariant = "warm"

// ScriptParams are the caller-supplied knobs for one call's script. Any empty
// field falls back to a deterministic default; FirstName is interpolated into
// the default greeting.
type ScriptParams struct {
	FirstName string
	Variant   string

	IntroLines        []string
	PositiveAckLine   string
	ValueBridgeLine   string
	QualifierQuestion string
	SMSOfferLine      string
	DeclineLine       string
	HandoffPromptLine string
	ConnectLine       string

	// HandoffNumber must already be normalized; empty disables handoff.
	HandoffNumber string
}

// BuildState derives the complete call state for dispatch, counters at zero.
func BuildState(p ScriptParams) callstate.State {
	name := ""
	if n := strings.TrimSpace(p.FirstName); n != "" {
		name = " " + n
	}

	s := callstate.State{
		Variant:           p.Variant,
		IntroLines:        p.IntroLines,
		PositiveAckLine:   p.PositiveAckLine,
		ValueBridgeLine:   p.ValueBridgeLine,
		QualifierQuestion: p.QualifierQuestion,
		SMSOfferLine:      p.SMSOfferLine,
		DeclineLine:       p.DeclineLine,
		HandoffPromptLine: p.HandoffPromptLine,
		ConnectLine:       p.ConnectLine,
		HandoffNumber:     p.HandoffNumber,
	}

	if s.Variant == "" {
		s.Variant = DefaultVariant
	}
	if len(s.IntroLines) == 0 {
		s.IntroLines = []string{
			"Hi" + name + ", this is Alex with Brightwater Realty.",
			"Do you have a quick second?",
		}
	}
	if s.PositiveAckLine == "" {
		s.PositiveAckLine = "Great, thanks!"
	}
	if s.ValueBridgeLine == "" {
		s.ValueBridgeLine = "I'll keep this really quick."
	}
	if s.QualifierQuestion == "" {
		s.QualifierQuestion = "Are you thinking about buying or selling a home in the next few months?"
	}
	if s.SMSOfferLine == "" {
		s.SMSOfferLine = "I'll text you a link with all the details. Have a great day!"
	}
	if s.DeclineLine == "" {
		s.DeclineLine = "No worries at all, I'll text you the info in case it's useful later. Have a great day!"
	}
	if s.HandoffPromptLine == "" {
		s.HandoffPromptLine = "Would you like me to connect you with one of our specialists right now?"
	}
	if s.ConnectLine == "" {
		s.ConnectLine = "Perfect, connecting you now."
	}
	return s
}

// DefaultState is what a stage falls back to when the state token is missing
// or corrupt.
func DefaultState() callstate.State {
	return BuildState(ScriptParams{})
}

var intentLines = map[string]string{
	speech.IntentBuy:    "That's great, we help a lot of buyers find the right place.",
	speech.IntentSell:   "Perfect, we can get you a free valuation and a plan to sell fast.",
	speech.IntentInvest: "Nice, we work with investors on off-market deals all the time.",
	speech.IntentRent:   "Got it, we have rental options coming up regularly.",
}

const genericQualifiedLine = "Sounds good, we can definitely help with that."

// QualifiedLine returns the intent-specific response for the qualify stage,
// or a generic line when no intent is known.
func QualifiedLine(intent string) string {
	if line, ok := intentLines[intent]; ok {
		return line
	}
	return genericQualifiedLine
}

// handoffUnavailableLine is spoken when the handoff stage is reached without
// a configured transfer number.
const handoffUnavailableLine = "Sorry, no one is available to take the call right now. We'll follow up soon. Goodbye!"

// apologyLine closes a call whose stage handler failed unexpectedly; the call
// must never end in silence.
const apologyLine = "Sorry, we're having technical trouble on our end. We'll reach out again soon. Goodbye!"
