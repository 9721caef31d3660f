package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Place is what a reverse-geocode lookup resolves a coordinate to.
type Place struct {
	Street      string
	City        string
	DisplayName string
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*Place, error)
}

// NominatimClient reverse-geocodes against a Nominatim-compatible endpoint.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road         string `json:"road"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (*Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "gabaylakad-simulator/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode failed with status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	city := body.Address.City
	if city == "" {
		city = body.Address.Town
	}
	if city == "" {
		city = body.Address.Village
	}
	if city == "" {
		city = body.Address.Municipality
	}

	return &Place{
		Street:      body.Address.Road,
		City:        city,
		DisplayName: body.DisplayName,
	}, nil
}
