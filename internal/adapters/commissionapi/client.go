// Package commissionapi is an http client for a remote commissions API
// it satisfies the session store contract so a matrix editor can run against another instance
package commissionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"rategrid/internal/core/matrix"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"
	"rategrid/internal/services/api/commissions/domain"

	"github.com/shopspring/decimal"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "rategrid-commissionapi"
	defaultMaxRetry  = 3
	defaultRetryBase = 250 * time.Millisecond
	maxErrBody       = 2048
)

// Options configures the Client
type Options struct {
	// BaseURL is the api root, e.g. https://rates.internal/api/v1
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// MaxRetries applies to list only; writes are never replayed. negative disables retries
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the /commissions endpoints of a remote instance
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = defaultMaxRetry
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("commissionapi"),
		sleep: time.Sleep,
	}
}

// envelope mirrors the platform response envelope
type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

// List fetches every record of productID
func (c *Client) List(ctx context.Context, productID string) ([]matrix.Record, error) {
	var out []domain.Commission
	if err := c.call(ctx, "/commissions/list", domain.ListInput{ProductID: productID}, &out, true); err != nil {
		return nil, err
	}
	recs := make([]matrix.Record, 0, len(out))
	for _, cm := range out {
		recs = append(recs, toRecord(cm))
	}
	return recs, nil
}

// Create persists one record remotely
func (c *Client) Create(ctx context.Context, in matrix.NewRecord) (matrix.Record, error) {
	var out domain.Commission
	body := domain.CreateInput{
		ProductID:   in.ProductID,
		PremiumTerm: in.PremiumTerm,
		Role:        int(in.Role),
		Year:        in.Year,
		Rate:        in.Rate,
	}
	if err := c.call(ctx, "/commissions/create", body, &out, false); err != nil {
		return matrix.Record{}, err
	}
	return toRecord(out), nil
}

// Update replaces the rate of a remote record
func (c *Client) Update(ctx context.Context, id string, rate decimal.Decimal) (matrix.Record, error) {
	var out domain.Commission
	if err := c.call(ctx, "/commissions/update", domain.UpdateInput{ID: id, Rate: rate}, &out, false); err != nil {
		return matrix.Record{}, err
	}
	return toRecord(out), nil
}

// Delete removes a remote record
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, "/commissions/delete", domain.DeleteInput{ID: id}, nil, false)
}

func toRecord(cm domain.Commission) matrix.Record {
	return matrix.Record{
		ID:          cm.ID,
		ProductID:   cm.ProductID,
		PremiumTerm: cm.PremiumTerm,
		Role:        matrix.Role(cm.Role),
		Year:        cm.Year,
		Rate:        cm.Rate,
	}
}

// call posts body to path and decodes the envelope data into out
// retry covers transport errors and 502/503/504
func (c *Client) call(ctx context.Context, path string, body, out any, retry bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "commissionapi encode %s", path)
	}
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "commissionapi new request failed")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if !retry || attempts >= c.opts.MaxRetries {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "commissionapi %s failed", path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Str("path", path).Dur("retry_in", back).Int("attempt", attempts).
				Msg("commissionapi transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Int("attempt", attempts).
			Msg("commissionapi http response")

		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !retry || attempts >= c.opts.MaxRetries {
				return perr.Newf(perr.ErrorCodeUnavailable, "commissionapi %s status %d", path, resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("path", path).Int("status", resp.StatusCode).Dur("retry_in", back).
				Msg("commissionapi transient error retrying")
			c.sleep(back)
			attempts++
			continue
		}
		return decode(resp, path, out)
	}
}

// decode reads the envelope; a non-2xx status keeps the remote error code and message
func decode(resp *http.Response, path string, out any) error {
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "commissionapi read %s", path)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if len(raw) > maxErrBody {
			raw = raw[:maxErrBody]
		}
		return perr.Newf(perr.ErrorCodeUnknown, "commissionapi %s unexpected status %d body %s", path, resp.StatusCode, string(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := env.Code
		if code == perr.ErrorCodeUnknown {
			code = codeForStatus(resp.StatusCode)
		}
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return perr.Newf(code, "%s", msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "commissionapi decode %s", path)
	}
	return nil
}

func codeForStatus(status int) perr.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return perr.ErrorCodeNotFound
	case http.StatusConflict:
		return perr.ErrorCodeConflict
	case http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case http.StatusBadRequest:
		return perr.ErrorCodeValidation
	case http.StatusUnprocessableEntity:
		return perr.ErrorCodeInvalidArgument
	}
	return perr.ErrorCodeUnknown
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	return min(d, 5*time.Second)
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}
