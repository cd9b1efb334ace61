package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/nexus-club/admin-api/pkg/config"
)

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	api  messageAPI
	from string
}

// NewTwilioSender returns nil when any credential is missing, which disables SMS.
// Every API request is cut off by the HTTP client after timeout.
func NewTwilioSender(cfg config.TwilioConfig, timeout time.Duration) *TwilioSender {
	if !cfg.Enabled() {
		return nil
	}
	httpClient := &twilioClient.Client{Credentials: twilioClient.NewCredentials(cfg.AccountSID, cfg.AuthToken)}
	httpClient.SetAccountSid(cfg.AccountSID)
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{Client: httpClient})
	return &TwilioSender{api: client.Api, from: cfg.FromNumber}
}

// Channel implements Sender.
func (s *TwilioSender) Channel() Channel { return ChannelSMS }

// Send delivers msg.Body to a single phone number.
func (s *TwilioSender) Send(ctx context.Context, to string, msg Message) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("empty phone number")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(smsBody(msg))

	return call(ctx, func() error {
		if _, err := s.api.CreateMessage(params); err != nil {
			return fmt.Errorf("twilio send to %s: %w", to, err)
		}
		return nil
	})
}

func smsBody(msg Message) string {
	if msg.Subject == "" {
		return msg.Body
	}
	return msg.Subject + "\n" + msg.Body
}
