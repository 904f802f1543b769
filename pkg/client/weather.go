package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// WeatherAPI covers forecasts and saved locations.
type WeatherAPI struct{ c *Client }

func (c *Client) Weather() WeatherAPI { return WeatherAPI{c} }

func (a WeatherAPI) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	var out Forecast
	if err := a.c.Do(ctx, http.MethodGet, "/weather/forecast/?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a WeatherAPI) SavedLocations(ctx context.Context) ([]SavedLocation, error) {
	var out []SavedLocation
	if err := a.c.Do(ctx, http.MethodGet, "/weather/saved-locations/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a WeatherAPI) CreateSavedLocation(ctx context.Context, req NewSavedLocation) (*SavedLocation, error) {
	var out SavedLocation
	if err := a.c.Do(ctx, http.MethodPost, "/weather/saved-locations/", JSON(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a WeatherAPI) DeleteSavedLocation(ctx context.Context, id uuid.UUID) error {
	return a.c.Do(ctx, http.MethodDelete, "/weather/saved-locations/"+id.String()+"/", nil, nil)
}

func (a WeatherAPI) ForecastForSaved(ctx context.Context, id uuid.UUID) (*SavedForecast, error) {
	var out SavedForecast
	path := "/weather/weather/saved/?" + url.Values{"location_id": {id.String()}}.Encode()
	if err := a.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a WeatherAPI) ProfileLocation(ctx context.Context) (*ProfileLocation, error) {
	var out ProfileLocation
	if err := a.c.Do(ctx, http.MethodGet, "/weather/test-location/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
