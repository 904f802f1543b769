package detection

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"smartkheti_backend/internal/config"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrClassifierUnavailable is returned when no model endpoint or labels are configured.
var ErrClassifierUnavailable = errors.New("disease classifier is not configured")

// Prediction is the arg-max class of one classification.
type Prediction struct {
	Index      int
	Label      string
	Confidence float32
}

// Classifier labels a leaf photo.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (Prediction, error)
}

// HTTPClassifier calls a model server speaking the TensorFlow Serving REST predict API.
type HTTPClassifier struct {
	endpoint   string
	labels     []string
	inputSize  int
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPClassifier(endpoint string, labels []string, inputSize int, httpClient *http.Client, logger *zap.Logger) *HTTPClassifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClassifier{
		endpoint:   endpoint,
		labels:     labels,
		inputSize:  inputSize,
		httpClient: httpClient,
		logger:     logger.Named("Classifier"),
	}
}

// NewClassifierFromConfig builds the classifier, or one that always reports
// ErrClassifierUnavailable when the endpoint or labels are missing.
func NewClassifierFromConfig(cfg *config.Config, logger *zap.Logger) Classifier {
	if cfg.ClassifierURL == "" {
		logger.Warn("CLASSIFIER_URL not set, disease detection is disabled")
		return unavailableClassifier{}
	}
	labels, err := LoadLabels(cfg.ClassifierLabelsPath)
	if err != nil {
		logger.Warn("Could not load classifier labels, disease detection is disabled",
			zap.String("path", cfg.ClassifierLabelsPath), zap.Error(err))
		return unavailableClassifier{}
	}
	return NewHTTPClassifier(cfg.ClassifierURL, labels, cfg.ClassifierInputSize, nil, logger)
}

type unavailableClassifier struct{}

func (unavailableClassifier) Classify(context.Context, image.Image) (Prediction, error) {
	return Prediction{}, ErrClassifierUnavailable
}

type predictRequest struct {
	Instances [][][][3]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float32 `json:"predictions"`
	Error       string      `json:"error"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, img image.Image) (Prediction, error) {
	payload, err := json.Marshal(predictRequest{Instances: [][][][3]float32{Preprocess(img, c.inputSize)}})
	if err != nil {
		return Prediction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Prediction{}, fmt.Errorf("reading classifier response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Prediction{}, fmt.Errorf("decoding classifier response: %w", err)
	}
	if parsed.Error != "" {
		return Prediction{}, fmt.Errorf("classifier error: %s", parsed.Error)
	}
	if len(parsed.Predictions) == 0 {
		return Prediction{}, errors.New("classifier returned no predictions")
	}

	scores := parsed.Predictions[0]
	idx := ArgMax(scores)
	if idx < 0 || idx >= len(c.labels) {
		return Prediction{}, fmt.Errorf("prediction index %d outside %d labels", idx, len(c.labels))
	}
	c.logger.Debug("Classified image", zap.String("label", c.labels[idx]), zap.Float32("confidence", scores[idx]))
	return Prediction{Index: idx, Label: c.labels[idx], Confidence: scores[idx]}, nil
}

// Preprocess converts img to RGB, scales it to size×size and normalises channels to [0,1].
func Preprocess(img image.Image, size int) [][][3]float32 {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([][][3]float32, size)
	for y := 0; y < size; y++ {
		row := make([][3]float32, size)
		for x := 0; x < size; x++ {
			i := dst.PixOffset(x, y)
			row[x] = [3]float32{
				float32(dst.Pix[i]) / 255,
				float32(dst.Pix[i+1]) / 255,
				float32(dst.Pix[i+2]) / 255,
			}
		}
		out[y] = row
	}
	return out
}

// ArgMax returns the index of the largest score, the first on ties, or -1 when empty.
func ArgMax(scores []float32) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

// LoadLabels reads one label per line, trimming whitespace and a leading "<index> "
// prefix as written by common model export tools. Blank lines keep their index.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, stripIndexPrefix(strings.TrimSpace(scanner.Text())))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

func stripIndexPrefix(line string) string {
	head, rest, found := strings.Cut(line, " ")
	if !found || head == "" {
		return line
	}
	if _, err := strconv.Atoi(head); err != nil {
		return line
	}
	return strings.TrimSpace(rest)
}

// SplitLabel splits "Crop_Disease_Name" on the first underscore into crop and disease.
// A label without an underscore is returned as both.
func SplitLabel(label string) (crop, disease string) {
	parts := strings.SplitN(label, "_", 2)
	if len(parts) < 2 {
		return parts[0], label
	}
	return parts[0], parts[1]
}
