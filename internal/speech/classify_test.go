package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	assert.True(t, IsAffirmative("yes"))
	assert.True(t, IsAffirmative("Yeah, go ahead"))
	assert.True(t, IsAffirmative("sounds good to me"))
	assert.True(t, IsAffirmative("  OKAY  "))
	assert.False(t, IsAffirmative(""))
	assert.False(t, IsAffirmative("   "))
	assert.False(t, IsAffirmative("maybe tomorrow"))
}

func TestIsNegative(t *testing.T) {
	assert.True(t, IsNegative("no thanks"))
	assert.True(t, IsNegative("I'm busy right now"))
	assert.True(t, IsNegative("please don't call again"))
	assert.True(t, IsNegative("not interested"))
	assert.False(t, IsNegative(""))
	assert.False(t, IsNegative("yes"))
}

func TestWantsLink(t *testing.T) {
	assert.True(t, WantsLink("can you text me"))
	assert.True(t, WantsLink("just send me a link"))
	assert.True(t, WantsLink("email it over"))
	assert.False(t, WantsLink(""))
	assert.False(t, WantsLink("tell me more"))
}

func TestDetectIntent(t *testing.T) {
	assert.Equal(t, IntentSell, DetectIntent("I want to sell my house"))
	assert.Equal(t, IntentBuy, DetectIntent("we're buying next spring"))
	assert.Equal(t, IntentInvest, DetectIntent("I'm an investor"))
	assert.Equal(t, IntentRent, DetectIntent("looking to rent something"))
	assert.Equal(t, IntentNone, DetectIntent("just looking"))
	assert.Equal(t, IntentNone, DetectIntent(""))
	assert.Equal(t, IntentNone, DetectIntent("   "))
}

func TestDetectIntentPriority(t *testing.T) {
	// buy outranks sell when both appear.
	assert.Equal(t, IntentBuy, DetectIntent("sell my place and buy a bigger one"))
	// invest outranks rent.
	assert.Equal(t, IntentInvest, DetectIntent("investment rental property"))
}

func TestEmptyIsNoSignalNotNegative(t *testing.T) {
	assert.False(t, IsNegative(""))
	assert.False(t, IsAffirmative(""))
	assert.False(t, WantsLink(""))
}
