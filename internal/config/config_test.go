package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoices(t *testing.T) {
	voices := parseVoices("warm=abc123, bold=def456,calm=ghi789")
	assert.Equal(t, map[string]string{
		"warm": "abc123",
		"bold": "def456",
		"calm": "ghi789",
	}, voices)
}

func TestParseVoicesSkipsMalformedPairs(t *testing.T) {
	voices := parseVoices("warm=abc123,nonsense,=orphan,empty=")
	assert.Equal(t, map[string]string{"warm": "abc123"}, voices)

	assert.Empty(t, parseVoices(""))
}

func TestValidateReportsMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID")
	assert.Contains(t, err.Error(), "PUBLIC_BASE_URL")

	cfg.Twilio = TwilioConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+15550001111"}
	cfg.Dialer.PublicBaseURL = "https://host.test"
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 4, cfg.Synthesis.Concurrency)
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeyHeader)
	assert.True(t, cfg.Twilio.ValidateSignatures)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNTH_VOICES", "warm=v1,bold=v2")
	t.Setenv("PUBLIC_BASE_URL", "https://host.test/")
	t.Setenv("TWILIO_VALIDATE_SIGNATURES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "v2", cfg.Synthesis.Voices["bold"])
	assert.Equal(t, "https://host.test", cfg.Dialer.PublicBaseURL, "trailing slash trimmed")
	assert.False(t, cfg.Twilio.ValidateSignatures)
}
