// Package inverter talks to the micro-inverter's local HTTP API. Every
// response is a JSON envelope of the form {"data": ..., "message": ...,
// "deviceId": ...}; only the data payload matters here.
package inverter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lox/powerlog/internal/httputil"
	"github.com/lox/powerlog/internal/upstream"
)

const source = "inverter"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for an inverter at baseURL, e.g.
// "http://192.168.178.150:8050".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httputil.NewClient(),
	}
}

// OutputChannel holds one channel's instantaneous power and its two
// cumulative energy counters.
type OutputChannel struct {
	Power float64
	// Energy generated since the device powered up; resets on restart.
	EnergyGenerationStartup float64
	// Lifetime energy counter, never reset.
	EnergyGenerationLifetime float64
}

type OutputData struct {
	Channel1 OutputChannel
	Channel2 OutputChannel
}

type rawOutputData struct {
	P1  float64 `json:"p1"`
	P2  float64 `json:"p2"`
	E1  float64 `json:"e1"`
	E2  float64 `json:"e2"`
	TE1 float64 `json:"te1"`
	TE2 float64 `json:"te2"`
}

type outputDataResponse struct {
	Data rawOutputData `json:"data"`
}

// Status is the device's on/off state.
type Status int

const (
	On  Status = 0
	Off Status = 1
)

func (s Status) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

// FetchOutputData returns per-channel power and energy counters from
// /getOutputData.
func (c *Client) FetchOutputData(ctx context.Context) (*OutputData, error) {
	var resp outputDataResponse
	if err := c.getJSON(ctx, "getOutputData", &resp); err != nil {
		return nil, err
	}
	return &OutputData{
		Channel1: OutputChannel{
			Power:                    resp.Data.P1,
			EnergyGenerationStartup:  resp.Data.E1,
			EnergyGenerationLifetime: resp.Data.TE1,
		},
		Channel2: OutputChannel{
			Power:                    resp.Data.P2,
			EnergyGenerationStartup:  resp.Data.E2,
			EnergyGenerationLifetime: resp.Data.TE2,
		},
	}, nil
}

type maxPowerResponse struct {
	Data struct {
		// The device reports its max power setting as a decimal string.
		MaxPower string `json:"maxPower"`
	} `json:"data"`
}

// FetchMaxPower returns the device's configured max power in watts from
// /getMaxPower.
func (c *Client) FetchMaxPower(ctx context.Context) (float64, error) {
	var resp maxPowerResponse
	if err := c.getJSON(ctx, "getMaxPower", &resp); err != nil {
		return 0, err
	}
	watts, err := strconv.ParseFloat(resp.Data.MaxPower, 64)
	if err != nil {
		return 0, &upstream.Error{
			Source: source, Op: "getMaxPower", Kind: upstream.Decode,
			Err: fmt.Errorf("parse maxPower %q: %w", resp.Data.MaxPower, err),
		}
	}
	return watts, nil
}

type onOffResponse struct {
	Data struct {
		// "0" means on, "1" means off.
		Status string `json:"status"`
	} `json:"data"`
}

// FetchOnOff returns the device's on/off status from /getOnOff. A transport
// failure here is the canonical signal that the device is unreachable.
func (c *Client) FetchOnOff(ctx context.Context) (Status, error) {
	var resp onOffResponse
	if err := c.getJSON(ctx, "getOnOff", &resp); err != nil {
		return Off, err
	}
	switch resp.Data.Status {
	case "0":
		return On, nil
	case "1":
		return Off, nil
	default:
		return Off, &upstream.Error{
			Source: source, Op: "getOnOff", Kind: upstream.Decode,
			Err: fmt.Errorf("unexpected status %q", resp.Data.Status),
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	url := c.baseURL + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream.Classify(source, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &upstream.Error{
			Source: source, Op: endpoint, Kind: upstream.ProtocolError,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &upstream.Error{
			Source: source, Op: endpoint, Kind: upstream.Decode,
			Err: err,
		}
	}
	return nil
}
