package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/httputil"
)

const defaultBotName = "LMR-Bot"

type Sender struct {
	webhookURL string
	botName    string
	http       *resty.Client
	log        logrus.FieldLogger
}

func NewSender(webhookURL, botName string, log logrus.FieldLogger) *Sender {
	if botName == "" {
		botName = defaultBotName
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "notify")
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		http: httputil.NewClient(httputil.ClientOptions{
			Timeout: 10 * time.Second,
			Retry: httputil.RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   1 * time.Second,
				MaxDelay:    5 * time.Second,
			},
			Logger: log,
		}),
		log: log,
	}
}

// Send logs msg and, when a webhook is configured, posts it. Delivery
// failures are logged, never returned.
func (s *Sender) Send(ctx context.Context, msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	s.log.Info(formatted)

	if s.webhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(s.formatPayload(formatted)).
		Post(s.webhookURL)
	if err != nil {
		s.log.WithError(err).Error("failed to send notification")
		return
	}
	if !resp.IsSuccess() {
		s.log.WithField("status", resp.StatusCode()).Error("webhook rejected notification")
	}
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
