package detection

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"smartkheti_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess(t *testing.T) {
	out := Preprocess(solidImage(10, 6, color.RGBA{R: 255, G: 0, B: 51, A: 255}), 4)
	require.Len(t, out, 4)
	for _, row := range out {
		require.Len(t, row, 4)
		for _, px := range row {
			assert.InDelta(t, 1.0, px[0], 0.01)
			assert.InDelta(t, 0.0, px[1], 0.01)
			assert.InDelta(t, 0.2, px[2], 0.01)
		}
	}
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, -1, ArgMax(nil))
	assert.Equal(t, 2, ArgMax([]float32{0.1, 0.2, 0.6, 0.1}))
	assert.Equal(t, 0, ArgMax([]float32{0.5, 0.5}))
}

func TestSplitLabel(t *testing.T) {
	crop, disease := SplitLabel("Tomato_Early_blight")
	assert.Equal(t, "Tomato", crop)
	assert.Equal(t, "Early_blight", disease)

	crop, disease = SplitLabel("Background")
	assert.Equal(t, "Background", crop)
	assert.Equal(t, "Background", disease)
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 Tomato_healthy\n1 Tomato_Early_blight\n  Potato_Late_blight  \n"), 0o600))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomato_healthy", "Tomato_Early_blight", "Potato_Late_blight"}, labels)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = LoadLabels(empty)
	assert.Error(t, err)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestHTTPClassifier_Classify(t *testing.T) {
	var received predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"predictions":[[0.05,0.9,0.05]]}`))
	}))
	defer server.Close()

	labels := []string{"Tomato_healthy", "Tomato_Early_blight", "Potato_Late_blight"}
	c := NewHTTPClassifier(server.URL, labels, 8, server.Client(), zap.NewNop())
	pred, err := c.Classify(context.Background(), solidImage(20, 20, color.White))
	require.NoError(t, err)

	assert.Equal(t, 1, pred.Index)
	assert.Equal(t, "Tomato_Early_blight", pred.Label)
	assert.InDelta(t, 0.9, pred.Confidence, 1e-6)

	require.Len(t, received.Instances, 1)
	assert.Len(t, received.Instances[0], 8)
	assert.Len(t, received.Instances[0][0], 8)
}

func TestHTTPClassifier_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"upstream failure", http.StatusInternalServerError, `{"error":"model not loaded"}`},
		{"error field", http.StatusOK, `{"error":"bad input"}`},
		{"no predictions", http.StatusOK, `{"predictions":[]}`},
		{"index outside labels", http.StatusOK, `{"predictions":[[0.1,0.1,0.8]]}`},
		{"malformed body", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewHTTPClassifier(server.URL, []string{"a", "b"}, 4, server.Client(), zap.NewNop())
			_, err := c.Classify(context.Background(), solidImage(4, 4, color.Black))
			assert.Error(t, err)
		})
	}
}

func TestNewClassifierFromConfig_Unavailable(t *testing.T) {
	cfg := &config.Config{ClassifierURL: "", ClassifierInputSize: 224}
	_, err := NewClassifierFromConfig(cfg, zap.NewNop()).Classify(context.Background(), solidImage(2, 2, color.Black))
	assert.ErrorIs(t, err, ErrClassifierUnavailable)

	cfg = &config.Config{ClassifierURL: "http://localhost:8501", ClassifierLabelsPath: filepath.Join(t.TempDir(), "none.txt"), ClassifierInputSize: 224}
	_, err = NewClassifierFromConfig(cfg, zap.NewNop()).Classify(context.Background(), solidImage(2, 2, color.Black))
	assert.ErrorIs(t, err, ErrClassifierUnavailable)
}
