package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/domain"
	"go.uber.org/zap"
)

const defaultTwilioBaseURL = "https://api.twilio.com"

// Twilio sends messages through the Twilio Messages REST API.
type Twilio struct {
	baseURL      string
	accountSID   string
	authToken    string
	fromPhone    string
	fromWhatsApp string
	client       *http.Client
	log          *zap.Logger
}

func NewTwilio(cfg config.NotifierConfig, log *zap.Logger) *Twilio {
	base := cfg.TwilioBaseURL
	if base == "" {
		base = defaultTwilioBaseURL
	}
	return &Twilio{
		baseURL:      strings.TrimRight(base, "/"),
		accountSID:   cfg.TwilioAccountSID,
		authToken:    cfg.TwilioAuthToken,
		fromPhone:    cfg.TwilioFromPhone,
		fromWhatsApp: cfg.TwilioFromWhatsApp,
		client:       &http.Client{Timeout: 15 * time.Second},
		log:          log.Named("twilio"),
	}
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (t *Twilio) Send(ctx context.Context, channel domain.DeliveryMethod, to, message string) Result {
	from := t.fromPhone
	if channel == domain.DeliveryWhatsApp {
		from = t.fromWhatsApp
		to = "whatsapp:" + to
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, url.PathEscape(t.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failed(channel, fmt.Errorf("build twilio request: %w", err))
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return failed(channel, fmt.Errorf("send twilio request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failed(channel, fmt.Errorf("read twilio response: %w", err))
	}

	var parsed twilioResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return failed(channel, fmt.Errorf("decode twilio response (status %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return failed(channel, fmt.Errorf("twilio error %d: %s", parsed.Code, parsed.Message))
	}

	t.log.Debug("message queued", zap.String("sid", parsed.SID), zap.String("status", parsed.Status))
	return Result{Channel: channel, Status: StatusDelivered, SID: parsed.SID}
}

func failed(channel domain.DeliveryMethod, err error) Result {
	return Result{Channel: channel, Status: StatusFailed, Err: err}
}

var _ Notifier = (*Twilio)(nil)
