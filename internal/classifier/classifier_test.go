package classifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"pneumoscan-server/internal/classifier"
)

var testLabels = map[int]string{0: "NORMAL", 1: "PNEUMONIA"}

func servingStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClassify(t *testing.T) {
	srv := servingStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Instances [][][][]float32 `json:"instances"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 1)
		require.Len(t, req.Instances[0], classifier.InputSize)
		require.Len(t, req.Instances[0][0], classifier.InputSize)
		require.Len(t, req.Instances[0][0][0], 1)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": [][]float64{{0.075, 0.925}},
		})
	})

	c := classifier.NewClient(srv.URL, testLabels)
	result, err := c.Classify(context.Background(), encodeTestImage(t, 320, 320))
	require.NoError(t, err)
	require.Equal(t, "PNEUMONIA", result.Label)
	require.InDelta(t, 92.5, result.Confidence, 1e-9)
}

func TestClassifyBackendError(t *testing.T) {
	srv := servingStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusInternalServerError)
	})

	c := classifier.NewClient(srv.URL, testLabels)
	_, err := c.Classify(context.Background(), encodeTestImage(t, 64, 64))
	require.Error(t, err)

	var cerr *classifier.ClassificationError
	require.ErrorAs(t, err, &cerr)
}

func TestClassifyEmptyPredictions(t *testing.T) {
	srv := servingStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"predictions": [][]float64{}})
	})

	c := classifier.NewClient(srv.URL, testLabels)
	_, err := c.Classify(context.Background(), encodeTestImage(t, 64, 64))
	require.Error(t, err)
}

func TestClassifyUnknownClassIndex(t *testing.T) {
	srv := servingStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": [][]float64{{0.1, 0.2, 0.7}},
		})
	})

	c := classifier.NewClient(srv.URL, testLabels)
	_, err := c.Classify(context.Background(), encodeTestImage(t, 64, 64))
	require.Error(t, err)
}

func TestClassifyBadImage(t *testing.T) {
	// The backend must never be reached for an undecodable image
	srv := servingStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be called")
	})

	c := classifier.NewClient(srv.URL, testLabels)
	_, err := c.Classify(context.Background(), []byte("not an image"))
	require.Error(t, err)
}
