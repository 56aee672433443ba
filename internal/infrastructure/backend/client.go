package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "securehire/pkg/errors"
)

type Config struct {
	BaseURL    string
	UserHeader string
	Timeout    time.Duration
	RetryMax   time.Duration
}

// Client talks to the staffing REST API. Callers are identified by a custom header
// carrying their Firebase uid, not by bearer tokens.
type Client struct {
	baseURL    string
	userHeader string
	http       *http.Client
	retryMax   time.Duration
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.UserHeader == "" {
		cfg.UserHeader = "X-User-Id"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    50,
		IdleConnTimeout: 90 * time.Second,
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userHeader: cfg.UserHeader,
		http:       &http.Client{Transport: tr, Timeout: cfg.Timeout},
		retryMax:   cfg.RetryMax,
		log:        logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// The caller gave up; that says nothing about the backend.
			var abandoned *callerGone
			if errors.As(err, &abandoned) {
				return true
			}
			// 4xx answers mean the backend is healthy.
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr.Status < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return c
}

type request struct {
	method      string
	path        string
	callerUID   string
	body        []byte
	contentType string
}

// errorBody covers the two error shapes the backend answers with.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path, callerUID string, in, out interface{}) error {
	req := request{method: method, path: path, callerUID: callerUID}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperrors.Internal("Failed to encode request", err)
		}
		req.body = b
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// FilePart is one file field of a multipart request.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

func (c *Client) doMultipart(ctx context.Context, path, callerUID string, fields map[string]string, file FilePart, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return apperrors.Internal("Failed to encode form", err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	h.Set("Content-Type", file.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return apperrors.Internal("Failed to encode form", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return apperrors.Internal("Failed to encode form", err)
	}
	if err := w.Close(); err != nil {
		return apperrors.Internal("Failed to encode form", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		callerUID:   callerUID,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, out)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead:
		return true
	}
	return false
}

// callerGone wraps an error caused by the caller's context ending mid-request.
type callerGone struct{ err error }

func (e *callerGone) Error() string { return e.err.Error() }
func (e *callerGone) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		err := c.doWithRetry(ctx, req, out)
		if err != nil && ctx.Err() != nil {
			return nil, &callerGone{err: err}
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Upstream(http.StatusServiceUnavailable, "Service is temporarily unavailable", err)
	}
	var abandoned *callerGone
	if errors.As(err, &abandoned) {
		return abandoned.err
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, req request, out interface{}) error {
	operation := func() error {
		err := c.once(ctx, req, out)
		if err == nil {
			return nil
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status < 500 {
			return backoff.Permanent(err)
		}
		if !idempotent(req.method) {
			return backoff.Permanent(err)
		}
		return err
	}

	if c.retryMax <= 0 {
		return unwrapPermanent(operation())
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = c.retryMax
	return unwrapPermanent(backoff.Retry(operation, backoff.WithContext(b, ctx)))
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

func (c *Client) once(ctx context.Context, req request, out interface{}) error {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return apperrors.Internal("Failed to build backend request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.callerUID != "" {
		httpReq.Header.Set(c.userHeader, req.callerUID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("backend request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return apperrors.Upstream(http.StatusBadGateway, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.Upstream(http.StatusBadGateway, "", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		c.log.Debug("backend error response", zap.String("path", req.path), zap.Int("status", resp.StatusCode), zap.String("message", msg))
		if resp.StatusCode == http.StatusNotFound {
			return apperrors.New(apperrors.CodeNotFound, notFoundMessage(msg), http.StatusNotFound, nil)
		}
		return apperrors.Upstream(resp.StatusCode, msg, fmt.Errorf("backend %s %s: %d", req.method, req.path, resp.StatusCode))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Upstream(http.StatusBadGateway, "", fmt.Errorf("decode %s: %w", req.path, err))
	}
	return nil
}

func notFoundMessage(msg string) string {
	if msg == "" {
		return "Resource not found"
	}
	return msg
}
