package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartkheti_backend/internal/config"

	"go.uber.org/zap"
)

// DailyVariables are the Open-Meteo daily series requested for every forecast.
var DailyVariables = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"windspeed_10m_max",
	"relative_humidity_2m_max",
	"weathercode",
	"cloudcover_mean",
}

// Forecast mirrors the Open-Meteo forecast response for the daily series above.
type Forecast struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	GenerationTimeMS     float64           `json:"generationtime_ms"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	Elevation            float64           `json:"elevation"`
	DailyUnits           map[string]string `json:"daily_units"`
	Daily                DailySeries       `json:"daily"`
}

type DailySeries struct {
	Time                []string   `json:"time"`
	TemperatureMax      []*float64 `json:"temperature_2m_max"`
	TemperatureMin      []*float64 `json:"temperature_2m_min"`
	PrecipitationSum    []*float64 `json:"precipitation_sum"`
	WindSpeedMax        []*float64 `json:"windspeed_10m_max"`
	RelativeHumidityMax []*float64 `json:"relative_humidity_2m_max"`
	WeatherCode         []*int     `json:"weathercode"`
	CloudCoverMean      []*float64 `json:"cloudcover_mean"`
}

// ForecastClient fetches daily forecasts for a coordinate.
type ForecastClient interface {
	Forecast(ctx context.Context, lat, lon float64) (*Forecast, error)
}

// OpenMeteoClient talks to the Open-Meteo forecast API.
type OpenMeteoClient struct {
	baseURL    string
	days       int
	timezone   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOpenMeteoClient(baseURL string, days int, timezone string, httpClient *http.Client, logger *zap.Logger) *OpenMeteoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &OpenMeteoClient{
		baseURL:    baseURL,
		days:       days,
		timezone:   timezone,
		httpClient: httpClient,
		logger:     logger.Named("OpenMeteo"),
	}
}

// NewOpenMeteoClientFromConfig is the Wire provider.
func NewOpenMeteoClientFromConfig(cfg *config.Config, logger *zap.Logger) *OpenMeteoClient {
	return NewOpenMeteoClient(cfg.WeatherAPIBaseURL, cfg.WeatherForecastDays, cfg.WeatherTimezone, nil, logger)
}

func (c *OpenMeteoClient) requestURL(lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid weather API URL: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("daily", strings.Join(DailyVariables, ","))
	q.Set("timezone", c.timezone)
	q.Set("forecast_days", strconv.Itoa(c.days))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	endpoint, err := c.requestURL(lat, lon)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("weather API returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var forecast Forecast
	if err := json.NewDecoder(res.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	c.logger.Debug("Fetched forecast", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Int("days", len(forecast.Daily.Time)))
	return &forecast, nil
}
