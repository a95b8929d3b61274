// Package telephony wraps the Twilio REST API behind the small surface the
// dialer and dialog engine need: place a call, send an SMS.
package telephony

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// CallParams describes one outbound call.
type CallParams struct {
	To    string
	From  string
	TwiML string // initial instruction document

	// StatusCallback receives call lifecycle events when set.
	StatusCallback string

	// Timeout is the ring timeout in seconds; zero uses the provider default.
	Timeout int
}

// Client is the provider surface consumed by the rest of the engine.
type Client interface {
	PlaceCall(ctx context.Context, p CallParams) (callSID string, err error)
	SendSMS(ctx context.Context, to, body, mediaURL string) error
}

// Twilio implements Client against the Twilio REST API.
type Twilio struct {
	client *twilio.RestClient
	from   string
}

// NewTwilio builds a client. from is the origin number used for SMS.
func NewTwilio(accountSID, authToken, from string) *Twilio {
	return &Twilio{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// PlaceCall starts an outbound call running the given instruction document.
func (t *Twilio) PlaceCall(_ context.Context, p CallParams) (string, error) {
	params := &twilioapi.CreateCallParams{}
	params.SetTo(p.To)
	params.SetFrom(p.From)
	params.SetTwiml(p.TwiML)
	if p.StatusCallback != "" {
		params.SetStatusCallback(p.StatusCallback)
		params.SetStatusCallbackEvent([]string{"initiated", "answered", "completed"})
	}
	if p.Timeout > 0 {
		params.SetTimeout(p.Timeout)
	}

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("place call to %s: %w", p.To, err)
	}
	if resp.Sid == nil {
		return "", errors.New("provider returned no call sid")
	}
	return *resp.Sid, nil
}

// SendSMS delivers a text message, optionally with a media attachment.
func (t *Twilio) SendSMS(_ context.Context, to, body, mediaURL string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms to %s: %w", to, err)
	}
	return nil
}
