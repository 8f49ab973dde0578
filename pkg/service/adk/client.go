// Package adk is the query client for a deployed Vertex AI Reasoning
// Engine. It issues authenticated streaming asyncStreamQuery calls,
// reassembles the streamed response into a finalized answer, and maps
// the answer to a verdict/confidence pair.
package adk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/newsverify/adkbridge/pkg/model"
	"github.com/newsverify/adkbridge/pkg/service/credential"
	"github.com/newsverify/adkbridge/pkg/service/verdict"
	"github.com/newsverify/adkbridge/pkg/utils/logging"
	"github.com/newsverify/adkbridge/pkg/utils/metrics"
)

const (
	// DefaultTimeout bounds one whole streaming call, connect to EOF.
	DefaultTimeout = 300 * time.Second

	// maxErrorBody caps how much of an error response is kept for
	// diagnostics.
	maxErrorBody = 300

	classMethod = "async_stream_query"
)

// Client performs authenticated streaming calls against one reasoning
// engine endpoint. Safe for concurrent use; each call reads whatever
// credential is current in the store at the moment of use.
type Client struct {
	endpoint   string
	appName    string
	timeout    time.Duration
	creds      *credential.Store
	classifier verdict.Classifier
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout overrides the total per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithAppName sets the application name attached to query logs.
func WithAppName(name string) Option {
	return func(c *Client) {
		c.appName = name
	}
}

// WithClassifier replaces the default keyword classifier.
func WithClassifier(cls verdict.Classifier) Option {
	return func(c *Client) {
		c.classifier = cls
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a query client for the given engine endpoint, reading
// bearer credentials from the store.
func New(endpoint string, creds *credential.Store, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, goerr.New("endpoint is required")
	}
	if creds == nil {
		return nil, goerr.New("credential store is required")
	}

	c := &Client{
		endpoint:   endpoint,
		timeout:    DefaultTimeout,
		creds:      creds,
		classifier: verdict.NewKeyword(),
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Run issues one authenticated streaming call and wraps the finalized
// answer in the legacy logs envelope. The envelope shape is preserved
// for callers that predate the streaming endpoint.
func (c *Client) Run(ctx context.Context, userID, query string) (*model.Envelope, error) {
	cred, ok := c.creds.Current()
	if !ok {
		return nil, goerr.Wrap(ErrMissingCredential, "no credential in store at call time")
	}

	logger := logging.From(ctx).With(
		"request_id", uuid.New().String(),
		"user_id", userID,
		"app", c.appName,
	)

	body, err := json.Marshal(model.QueryRequest{
		ClassMethod: classMethod,
		Input: model.QueryInput{
			UserID:  userID,
			Message: query,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal query request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Error("streaming call timed out", "timeout", c.timeout)
			return nil, goerr.Wrap(ErrTimeout, "streaming call exceeded deadline", goerr.V("timeout", c.timeout))
		}
		logger.Error("streaming call failed", "error", err)
		return nil, goerr.Wrap(ErrTransport, "request failed", goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Error("engine returned error status", "status", resp.StatusCode, "body", string(diag))
		return nil, goerr.Wrap(ErrTransport, "engine returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(diag)))
	}

	final, discarded, err := decodeStream(logging.With(ctx, logger), resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, goerr.Wrap(ErrTimeout, "stream read exceeded deadline", goerr.V("timeout", c.timeout))
		}
		logger.Error("stream read failed", "error", err)
		return nil, goerr.Wrap(ErrTransport, "stream read failed", goerr.V("cause", err.Error()))
	}

	logger.Info("engine run ok", "duration", time.Since(t0), "discarded_lines", discarded)

	return &model.Envelope{
		Logs: []model.LogEntry{
			{Content: model.Content{Parts: []model.Part{{Text: final}}}},
		},
	}, nil
}

// CallADK runs one verification query end to end: user derivation,
// streaming call, envelope checks, classification. Every failure wraps
// one of the package's sentinel errors; no partial result is ever
// returned.
func (c *Client) CallADK(ctx context.Context, query string, meta model.Metadata) (*model.QueryResult, error) {
	userID := meta.UserID()

	env, err := c.Run(ctx, userID, query)
	if err != nil {
		if isClientErr(err) {
			return nil, err
		}
		logging.From(ctx).Error("unexpected engine call failure", "user_id", userID, "error", err)
		return nil, goerr.Wrap(ErrUnexpected, "internal failure during engine call", goerr.V("cause", err.Error()))
	}

	finalText, err := extractFinal(env)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid response envelope", goerr.V("user_id", userID))
	}

	v, confidence := c.classifier.Classify(finalText)
	metrics.Queries.WithLabelValues(string(v)).Inc()

	return &model.QueryResult{
		Verdict:    v,
		Confidence: confidence,
		Evidence:   []string{},
		RawFinal:   finalText,
	}, nil
}

// Warmup is a legacy no-op kept for callers of the pre-streaming bridge
// API. The engine is stateless per call and needs no session priming.
func (c *Client) Warmup() {}

// extractFinal pulls the finalized answer text out of the legacy logs
// envelope: logs must be non-empty, and the last entry must carry at
// least one part.
func extractFinal(env *model.Envelope) (string, error) {
	if env == nil || len(env.Logs) == 0 {
		return "", goerr.Wrap(ErrMissingLogs, "response envelope has no log entries")
	}

	last := env.Logs[len(env.Logs)-1]
	if len(last.Content.Parts) == 0 {
		return "", goerr.Wrap(ErrMalformedResponse, "final log entry has no text part")
	}

	return last.Content.Parts[0].Text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
