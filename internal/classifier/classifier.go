package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is what the model boundary yields for one image: the predicted
// label and a confidence in [0,100].
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier maps an uploaded image to a label and confidence score. The
// model itself is opaque; a failed classification must not create a record.
type Classifier interface {
	Classify(ctx context.Context, imageBytes []byte) (Result, error)
}

// ClassificationError covers anything that prevents a prediction: a
// malformed image, an unreachable backend, or a malformed backend response.
type ClassificationError struct {
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classification failed: %s", e.Reason)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Client talks to a TensorFlow-Serving style predict endpoint. The label
// map is loaded once at startup and never changes afterwards.
type Client struct {
	ServingURL string
	Labels     map[int]string
	HTTPClient *http.Client
}

// NewClient creates a classifier client for the given serving endpoint.
func NewClient(servingURL string, labels map[int]string) *Client {
	return &Client{
		ServingURL: servingURL,
		Labels:     labels,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// Classify preprocesses the image, asks the serving backend for class
// scores, and argmaxes them into a label. Confidence is the winning score
// scaled to a percentage.
func (c *Client) Classify(ctx context.Context, imageBytes []byte) (Result, error) {
	pixels, err := Preprocess(imageBytes)
	if err != nil {
		return Result{}, err
	}

	// Shape the grid as one batch instance with a trailing channel axis.
	instance := make([][][]float32, InputSize)
	for y, row := range pixels {
		cols := make([][]float32, InputSize)
		for x, v := range row {
			cols[x] = []float32{v}
		}
		instance[y] = cols
	}

	body, err := json.Marshal(predictRequest{Instances: [][][][]float32{instance}})
	if err != nil {
		return Result{}, &ClassificationError{Reason: "could not encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ServingURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, &ClassificationError{Reason: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{}, &ClassificationError{Reason: "model backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &ClassificationError{Reason: "could not read backend response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, &ClassificationError{Reason: fmt.Sprintf("model backend returned status %d", resp.StatusCode)}
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, &ClassificationError{Reason: "could not parse backend response", Err: err}
	}
	if parsed.Error != "" {
		return Result{}, &ClassificationError{Reason: "model backend error: " + parsed.Error}
	}
	if len(parsed.Predictions) == 0 || len(parsed.Predictions[0]) == 0 {
		return Result{}, &ClassificationError{Reason: "backend returned no predictions"}
	}

	scores := parsed.Predictions[0]
	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}

	label, ok := c.Labels[best]
	if !ok {
		return Result{}, &ClassificationError{Reason: fmt.Sprintf("no label for class index %d", best)}
	}

	return Result{Label: label, Confidence: scores[best] * 100}, nil
}
