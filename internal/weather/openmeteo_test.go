package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleForecast = `{
  "latitude": 27.7,
  "longitude": 85.32,
  "generationtime_ms": 0.5,
  "utc_offset_seconds": 20700,
  "timezone": "Asia/Kathmandu",
  "timezone_abbreviation": "+0545",
  "elevation": 1337,
  "daily_units": {"time": "iso8601", "temperature_2m_max": "°C"},
  "daily": {
    "time": ["2026-03-18", "2026-03-19"],
    "temperature_2m_max": [24.1, null],
    "temperature_2m_min": [9.8, 10.2],
    "precipitation_sum": [0, 2.4],
    "windspeed_10m_max": [11.2, 9.7],
    "relative_humidity_2m_max": [88, 91],
    "weathercode": [3, 61],
    "cloudcover_mean": [40, 85]
  }
}`

// fakeOpenMeteo serves sampleForecast and counts requests.
func fakeOpenMeteo(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "27.7", q.Get("latitude"))
		assert.Equal(t, "85.32", q.Get("longitude"))
		assert.Equal(t, strings.Join(DailyVariables, ","), q.Get("daily"))
		assert.Equal(t, "Asia/Kathmandu", q.Get("timezone"))
		assert.Equal(t, "16", q.Get("forecast_days"))
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(sampleForecast))
		} else {
			_, _ = w.Write([]byte(`{"error":true,"reason":"upstream down"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestOpenMeteoClient_Forecast(t *testing.T) {
	server, calls := fakeOpenMeteo(t, http.StatusOK)
	client := NewOpenMeteoClient(server.URL+"/v1/forecast", 16, "Asia/Kathmandu", server.Client(), zap.NewNop())

	forecast, err := client.Forecast(context.Background(), 27.7, 85.32)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, "Asia/Kathmandu", forecast.Timezone)
	assert.Equal(t, []string{"2026-03-18", "2026-03-19"}, forecast.Daily.Time)
	require.Len(t, forecast.Daily.TemperatureMax, 2)
	assert.InDelta(t, 24.1, *forecast.Daily.TemperatureMax[0], 1e-9)
	assert.Nil(t, forecast.Daily.TemperatureMax[1])
	assert.Equal(t, 61, *forecast.Daily.WeatherCode[1])
}

func TestOpenMeteoClient_UpstreamError(t *testing.T) {
	server, _ := fakeOpenMeteo(t, http.StatusBadGateway)
	client := NewOpenMeteoClient(server.URL, 16, "Asia/Kathmandu", server.Client(), zap.NewNop())

	_, err := client.Forecast(context.Background(), 27.7, 85.32)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
