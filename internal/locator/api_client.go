package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"geolocale/models"
)

// APIClient is a Resolver that talks to the geolocation HTTP endpoints.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for a geolocale server at baseURL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	Success bool                `json:"success"`
	Data    *models.Geolocation `json:"data"`
	Error   string              `json:"error"`
}

// ResolveByIP calls the GET operation; the server derives the client IP.
func (c *APIClient) ResolveByIP(ctx context.Context) (*models.Geolocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/geolocation", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocation request: %w", err)
	}
	return c.do(req)
}

// ResolveByCoordinates calls the POST operation with the given coordinates.
func (c *APIClient) ResolveByCoordinates(ctx context.Context, latitude, longitude float64) (*models.Geolocation, error) {
	payload, err := json.Marshal(map[string]float64{
		"latitude":  latitude,
		"longitude": longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode coordinates: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/geolocation", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *APIClient) do(req *http.Request) (*models.Geolocation, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !body.Success || body.Data == nil {
		msg := body.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("geolocation endpoint: %s", msg)
	}

	return body.Data, nil
}
