package callstate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := State{
		Variant:              "warm",
		IntroLines:           []string{"Hey, is this Sam?", "This is Alex from Brightwater."},
		PositiveAckLine:      "Great!",
		ValueBridgeLine:      "I'll keep this quick.",
		QualifierQuestion:    "Are you looking to buy or sell this year?",
		SMSOfferLine:         "I'll text you the details.",
		DeclineLine:          "No problem, have a good one.",
		HandoffPromptLine:    "Want me to connect you with a specialist right now?",
		ConnectLine:          "Connecting you now.",
		HandoffNumber:        "+15551230000",
		PrefillIntent:        "sell",
		IntroNoSpeechCount:   1,
		QualifyNoSpeechCount: 0,
	}

	token := Encode(s)
	require.NotEmpty(t, token)

	decoded := Decode(token)
	require.NotNil(t, decoded)
	assert.Equal(t, s, *decoded)
}

func TestEncodeTokenIsURLSafe(t *testing.T) {
	token := Encode(State{
		Variant:    "bold",
		IntroLines: []string{"a line with spaces & symbols?!", "another/one"},
	})
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.False(t, strings.ContainsAny(token, " \t\n"))
}

func TestDecodeGarbage(t *testing.T) {
	assert.Nil(t, Decode(""))
	assert.Nil(t, Decode("!!!not base64!!!"))
	// Valid base64 but not JSON.
	assert.Nil(t, Decode("bm90IGpzb24"))
}

func TestDecodeZeroValue(t *testing.T) {
	decoded := Decode(Encode(State{}))
	require.NotNil(t, decoded)
	assert.Equal(t, State{}, *decoded)
}
