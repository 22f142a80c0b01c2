package httputil

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Retry     RetryConfig
	Logger    logrus.FieldLogger
}

// NewClient returns a resty client with exponential backoff retry.
// Transport errors, 5xx and 429 are retried; on 429 a Retry-After header
// (in seconds) overrides the backoff, capped at MaxDelay. Other 4xx
// responses are returned to the caller untouched.
func NewClient(opts ClientOptions) *resty.Client {
	retry := opts.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = DefaultRetry.BaseDelay
	}
	if retry.MaxDelay < retry.BaseDelay {
		retry.MaxDelay = retry.BaseDelay
	}

	c := resty.New().
		SetRetryCount(retry.MaxAttempts - 1).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.MaxDelay).
		AddRetryCondition(shouldRetry).
		SetRetryAfter(retryAfter(retry.MaxDelay))

	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	for k, v := range opts.Headers {
		c.SetHeader(k, v)
	}
	if opts.Logger != nil {
		c.SetLogger(restyLogger{opts.Logger})
		c.AddRetryHook(func(resp *resty.Response, err error) {
			entry := opts.Logger.WithField("component", "http")
			if resp != nil && resp.Request != nil {
				entry = entry.WithFields(logrus.Fields{
					"attempt": resp.Request.Attempt,
					"url":     resp.Request.URL,
				})
			}
			if err != nil {
				entry.WithError(err).Warn("request failed, retrying")
				return
			}
			if resp != nil {
				entry = entry.WithField("status", resp.StatusCode())
			}
			entry.Warn("request failed, retrying")
		})
	}

	return c
}

func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func retryAfter(max time.Duration) resty.RetryAfterFunc {
	return func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		if resp == nil || resp.StatusCode() != http.StatusTooManyRequests {
			return 0, nil
		}
		secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
		if err != nil || secs <= 0 {
			return 0, nil
		}
		d := time.Duration(secs) * time.Second
		if d > max {
			d = max
		}
		return d, nil
	}
}

// restyLogger adapts logrus to resty's Logger interface.
type restyLogger struct {
	log logrus.FieldLogger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debugf(format, v...) }
