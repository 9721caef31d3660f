package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gabaylakad/backend/internal/api/middleware"
)

// APIClient handles HTTP communication with the backend. The access
// token rotates: responses may carry a renewed token in a header, and
// the client adopts it so long-running simulations outlive the initial
// ten-minute window.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type AuthResponse struct {
	Message      string  `json:"message"`
	Token        *string `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	User         *User   `json:"user"`
}

type Device struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serialNumber"`
	Nickname     string `json:"nickname"`
}

// Token returns the current access token.
func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Login authenticates and stores the session tokens on the client.
func (c *APIClient) Login(email, password string) (*User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := c.post("/auth/login", body)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("login response carried no token")
	}

	c.mu.Lock()
	c.accessToken = *result.Token
	c.refreshToken = result.RefreshToken
	c.mu.Unlock()

	return result.User, nil
}

// Refresh trades the stored refresh token for a fresh session. Useful
// when the simulator idles past the access-token window.
func (c *APIClient) Refresh() error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()

	body := map[string]string{"refreshToken": refresh}

	resp, err := c.post("/auth/refresh-token", body)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("refresh failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Token == nil {
		return fmt.Errorf("refresh response carried no token")
	}

	c.mu.Lock()
	c.accessToken = *result.Token
	c.refreshToken = result.RefreshToken
	c.mu.Unlock()

	return nil
}

// ListDevices fetches the devices bound to the logged-in account.
func (c *APIClient) ListDevices() ([]Device, error) {
	resp, err := c.get("/devices")
	if err != nil {
		return nil, fmt.Errorf("list devices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list devices failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var devices []Device
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return devices, nil
}

// PostLocation submits one sample through the REST surface.
func (c *APIClient) PostLocation(body interface{}) error {
	resp, err := c.post("/locations", body)
	if err != nil {
		return fmt.Errorf("post location request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post location failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// HTTP helpers

func (c *APIClient) get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.adoptRenewed(resp)
	return resp, nil
}

func (c *APIClient) post(path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.adoptRenewed(resp)
	return resp, nil
}

func (c *APIClient) authorize(req *http.Request) {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *APIClient) adoptRenewed(resp *http.Response) {
	renewed := resp.Header.Get(middleware.RenewedTokenHeader)
	if renewed == "" {
		return
	}
	c.mu.Lock()
	c.accessToken = renewed
	c.mu.Unlock()
}
