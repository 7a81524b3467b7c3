package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const openMeteoBase = "https://api.open-meteo.com/v1/forecast"

// Conditions is the current weather payload delivered to the weather
// widget.
type Conditions struct {
	Location    string    `json:"location"`
	TempC       float64   `json:"tempC"`
	TempF       float64   `json:"tempF"`
	Code        int       `json:"code"`
	Description string    `json:"description"`
	WindKph     float64   `json:"windKph"`
	HighC       float64   `json:"highC"`
	LowC        float64   `json:"lowC"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// weatherCodes maps WMO interpretation codes to short descriptions.
var weatherCodes = map[int]string{
	0:  "Clear",
	1:  "Mostly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Heavy drizzle",
	56: "Freezing drizzle",
	57: "Freezing drizzle",
	61: "Light rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Freezing rain",
	71: "Light snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Showers",
	81: "Showers",
	82: "Heavy showers",
	85: "Snow showers",
	86: "Snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm",
	99: "Thunderstorm",
}

// DescribeCode returns a short human label for a WMO weather code.
func DescribeCode(code int) string {
	if d, ok := weatherCodes[code]; ok {
		return d
	}
	return "Unknown"
}

// WeatherSource fetches current conditions from Open-Meteo for a postal
// code resolved through the geocoder. It implements Source.
type WeatherSource struct {
	client   *http.Client
	geocoder *Geocoder
	baseURL  string

	postal   string
	country  string
	interval time.Duration
}

// NewWeatherSource builds a weather source for the given postal code.
func NewWeatherSource(geocoder *Geocoder, postal, country string, interval time.Duration) *WeatherSource {
	return &WeatherSource{
		client:   &http.Client{Timeout: 15 * time.Second},
		geocoder: geocoder,
		baseURL:  openMeteoBase,
		postal:   postal,
		country:  country,
		interval: interval,
	}
}

func (w *WeatherSource) Name() string            { return "weather" }
func (w *WeatherSource) Interval() time.Duration { return w.interval }

// forecastURL builds the Open-Meteo request for a coordinate pair.
func (w *WeatherSource) forecastURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("forecast_days", "1")
	q.Set("timezone", "auto")
	return w.baseURL + "?" + q.Encode()
}

// Fetch resolves the configured postal code and returns current
// Conditions. An unresolvable postal code is an error; the widget keeps
// showing its placeholder until a fetch succeeds.
func (w *WeatherSource) Fetch(ctx context.Context) (interface{}, error) {
	loc, err := w.geocoder.Resolve(ctx, w.country, w.postal)
	if err != nil {
		return nil, err
	}
	if !loc.Known {
		return nil, fmt.Errorf("weather: postal code %q not found", w.postal)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.forecastURL(loc.Latitude, loc.Longitude), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather: read response: %w", err)
	}

	cond, err := parseForecast(body)
	if err != nil {
		return nil, err
	}
	cond.Location = loc.Name
	cond.FetchedAt = time.Now()
	return cond, nil
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func parseForecast(body []byte) (Conditions, error) {
	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return Conditions{}, fmt.Errorf("weather: decode forecast: %w", err)
	}

	cond := Conditions{
		TempC:       fr.Current.Temperature,
		TempF:       fr.Current.Temperature*9/5 + 32,
		Code:        fr.Current.WeatherCode,
		Description: DescribeCode(fr.Current.WeatherCode),
		WindKph:     fr.Current.WindSpeed,
	}
	if len(fr.Daily.TempMax) > 0 {
		cond.HighC = fr.Daily.TempMax[0]
	}
	if len(fr.Daily.TempMin) > 0 {
		cond.LowC = fr.Daily.TempMin[0]
	}
	return cond, nil
}
