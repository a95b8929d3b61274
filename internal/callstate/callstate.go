// Package callstate carries the dialog state of an active call across
// telephony webhook round-trips. There is no server-side session between
// callbacks (the provider may hit any instance), so the full state is encoded
// into each callback URL and decoded on the way back in.
package callstate

// State describes where a call is in the dialog and what it will say next.
// Everything except the two no-speech counters and PrefillIntent is fixed at
// dispatch time; stage handlers copy the value instead of mutating shared
// memory.
type State struct {
	Variant string `json:"v,omitempty"`

	IntroLines        []string `json:"il,omitempty"`
	PositiveAckLine   string   `json:"pa,omitempty"`
	ValueBridgeLine   string   `json:"vb,omitempty"`
	QualifierQuestion string   `json:"qq,omitempty"`
	SMSOfferLine      string   `json:"so,omitempty"`
	DeclineLine       string   `json:"dl,omitempty"`
	HandoffPromptLine string   `json:"hp,omitempty"`
	ConnectLine       string   `json:"cl,omitempty"`

	// HandoffNumber is the normalized number for live transfer; empty means
	// handoff is disabled for this call.
	HandoffNumber string `json:"hn,omitempty"`

	// PrefillIntent carries an intent classified during the intro stage
	// forward into qualify.
	PrefillIntent string `json:"pi,omitempty"`

	IntroNoSpeechCount   int `json:"in,omitempty"`
	QualifyNoSpeechCount int `json:"qn,omitempty"`
}
