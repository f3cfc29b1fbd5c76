// Package weather fetches current cloud cover and irradiance from the
// open-meteo DWD ICON endpoint for a fixed location.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/powerlog/internal/httputil"
	"github.com/lox/powerlog/internal/upstream"
)

const (
	source = "weather"

	DefaultBaseURL = "https://api.open-meteo.com/v1/dwd-icon"

	currentFields = "cloud_cover,shortwave_radiation_instant,direct_radiation_instant," +
		"diffuse_radiation_instant,direct_normal_irradiance_instant," +
		"global_tilted_irradiance_instant,terrestrial_radiation_instant"
)

type Client struct {
	baseURL    string
	lat, lon   float64
	httpClient *http.Client
}

func NewClient(baseURL string, lat, lon float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		lat:        lat,
		lon:        lon,
		httpClient: httputil.NewClient(),
	}
}

// CurrentConditions is one atomic weather reading: cloud cover in percent and
// six instantaneous irradiance measures in W/m².
type CurrentConditions struct {
	CloudCover float64 `json:"cloud_cover"`

	TerrestrialRadiation   float64 `json:"terrestrial_radiation_instant"`
	DirectRadiation        float64 `json:"direct_radiation_instant"`
	DiffuseRadiation       float64 `json:"diffuse_radiation_instant"`
	ShortwaveRadiation     float64 `json:"shortwave_radiation_instant"`
	DirectNormalIrradiance float64 `json:"direct_normal_irradiance_instant"`
	GlobalTiltedIrradiance float64 `json:"global_tilted_irradiance_instant"`
}

type currentResponse struct {
	Current *CurrentConditions `json:"current"`
}

// FetchCurrent returns the current conditions at the client's location.
func (c *Client) FetchCurrent(ctx context.Context) (*CurrentConditions, error) {
	url := fmt.Sprintf("%s?latitude=%v&longitude=%v&current=%s&tilt=90",
		c.baseURL, c.lat, c.lon, currentFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.Classify(source, "current", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &upstream.Error{
			Source: source, Op: "current", Kind: upstream.ProtocolError,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &upstream.Error{
			Source: source, Op: "current", Kind: upstream.Decode,
			Err: err,
		}
	}
	if data.Current == nil {
		return nil, &upstream.Error{
			Source: source, Op: "current", Kind: upstream.Decode,
			Err: fmt.Errorf("response missing current block"),
		}
	}
	return data.Current, nil
}
