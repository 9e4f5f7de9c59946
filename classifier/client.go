// Package classifier talks to the remote digit classifier: predict, train
// and train_all, one request per call and no retries.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/juruen/digitpad/auth"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/sample"
)

const (
	PredictPath  = "/api/predict"
	TrainPath    = "/api/train"
	TrainAllPath = "/api/train_all"

	// DefaultEpochs is what the pad asks for on train_all
	DefaultEpochs = 10
)

// Client issues classifier requests against one base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
	authSecret string
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout:
// a request waits as long as the server takes.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAuthSecret makes every request carry a bearer token signed with secret.
func WithAuthSecret(secret string) Option {
	return func(cl *Client) {
		cl.authSecret = secret
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveBaseURL picks the explicit override when set, else the origin.
func ResolveBaseURL(override, origin string) string {
	base := strings.TrimSpace(override)
	if base == "" {
		base = strings.TrimSpace(origin)
	}
	return strings.TrimRight(base, "/")
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict asks the classifier for the digit drawn in s.
func (c *Client) Predict(ctx context.Context, s sample.Sample) (*Prediction, error) {
	const op = "predict"

	var res PredictResponse
	if err := c.post(ctx, op, PredictPath, PredictRequest{Image: s.Slice()}, &res); err != nil {
		return nil, err
	}

	if res.Digit == nil || res.Confidence == nil {
		return nil, &ResponseShapeError{Op: op, Err: errors.New("digit and confidence are required")}
	}
	if *res.Digit < sample.MinLabel || *res.Digit > sample.MaxLabel {
		return nil, &ResponseShapeError{Op: op, Err: errors.Errorf("digit %d out of range", *res.Digit)}
	}
	if *res.Confidence < 0 || *res.Confidence > 1 {
		return nil, &ResponseShapeError{Op: op, Err: errors.Errorf("confidence %v out of range", *res.Confidence)}
	}
	if res.Probs != nil && len(res.Probs) != sample.MaxLabel+1 {
		return nil, &ResponseShapeError{Op: op, Err: errors.Errorf("expected 10 probabilities, got %d", len(res.Probs))}
	}

	return &Prediction{
		Digit:      *res.Digit,
		Confidence: *res.Confidence,
		Probs:      res.Probs,
	}, nil
}

// Train sends s as an example of label. An invalid label is rejected
// without contacting the server.
func (c *Client) Train(ctx context.Context, s sample.Sample, label sample.Label) (*TrainAck, error) {
	const op = "train"

	if !label.Valid() {
		return nil, &sample.ValidationError{Input: strconv.Itoa(int(label)), Reason: "must be between 0 and 9"}
	}

	var res TrainResponse
	if err := c.post(ctx, op, TrainPath, TrainRequest{Image: s.Slice(), Label: int(label)}, &res); err != nil {
		return nil, err
	}

	return &TrainAck{Message: res.Message, Loss: res.Loss, Count: res.Count}, nil
}

// TrainAll asks the server to train over every stored sample.
func (c *Client) TrainAll(ctx context.Context, epochs int) (*TrainAllAck, error) {
	const op = "train_all"

	var res TrainAllResponse
	if err := c.post(ctx, op, TrainAllPath, TrainAllRequest{Epochs: epochs}, &res); err != nil {
		return nil, err
	}

	if res.Message == nil || res.Epochs == nil || res.AvgEpochLoss == nil || res.Samples == nil {
		return nil, &ResponseShapeError{Op: op, Err: errors.New("message, epochs, avg_epoch_loss and samples are required")}
	}

	return &TrainAllAck{
		Message:      *res.Message,
		Epochs:       *res.Epochs,
		AvgEpochLoss: *res.AvgEpochLoss,
		Samples:      *res.Samples,
	}, nil
}

// post sends one JSON request and decodes the answer into out.
func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if c.authSecret != "" {
		token, err := auth.NewToken(c.authSecret, c.now())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Trace.Printf("%s: POST %s (%d bytes, request %s)", op, req.URL, len(data), requestID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: errors.Wrap(err, "failed to send request")}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &TransportError{Op: op, Err: errors.Wrap(err, "failed to read response")}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Trace.Printf("%s: status %d, response: %s", op, res.StatusCode, preview(body))
		return &ServerError{Op: op, StatusCode: res.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Trace.Printf("%s: can't decode response: %s", op, preview(body))
		return &ResponseShapeError{Op: op, Err: err}
	}

	return nil
}

func preview(body []byte) string {
	const previewLen = 200
	if len(body) < previewLen {
		return string(body)
	}
	return string(body[:previewLen])
}
