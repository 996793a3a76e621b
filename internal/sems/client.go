package sems

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Base URLs per SEMS region. The demo account logs in on "us" but serves its
// data from "eu", so the two regions are configured independently.
var baseURLs = map[string]string{
	"us": "https://us.semsportal.com",
	"eu": "https://eu.semsportal.com",
}

const requestTimeout = 20 * time.Second

// Client talks to the GoodWe SEMS Portal API. It manages the session token and
// re-authenticates transparently once when a data request is rejected.
type Client struct {
	httpClient   *http.Client
	loginBaseURL string
	dataBaseURL  string
	account      string
	password     string

	mu    sync.Mutex
	token string
}

// NewClient creates a SEMS client for the given account and regions. Unknown
// regions fall back to "us" for login and "eu" for data.
func NewClient(account, password, loginRegion, dataRegion string) *Client {
	loginURL, ok := baseURLs[loginRegion]
	if !ok {
		loginURL = baseURLs["us"]
	}
	dataURL, ok := baseURLs[dataRegion]
	if !ok {
		dataURL = baseURLs["eu"]
	}
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		loginBaseURL: loginURL,
		dataBaseURL:  dataURL,
		account:      account,
		password:     password,
	}
}

// NewClientWithBaseURLs bypasses the region map; used against test servers.
func NewClientWithBaseURLs(account, password, loginBaseURL, dataBaseURL string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		loginBaseURL: loginBaseURL,
		dataBaseURL:  dataBaseURL,
		account:      account,
		password:     password,
	}
}

// initialToken builds the pre-login token the crosslogin endpoint expects: a
// base64-encoded placeholder session.
func initialToken() string {
	placeholder := map[string]interface{}{
		"uid":       "",
		"timestamp": 0,
		"token":     "",
		"client":    "web",
		"version":   "",
		"language":  "en",
	}
	encoded, _ := json.Marshal(placeholder)
	return base64.StdEncoding.EncodeToString(encoded)
}

// Login authenticates against the portal and stores the session token.
func (c *Client) Login() error {
	payload, _ := json.Marshal(map[string]string{
		"account": c.account,
		"pwd":     c.password,
	})

	req, err := http.NewRequest(http.MethodPost, c.loginBaseURL+"/api/v2/common/crosslogin", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Token", initialToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var body struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return fmt.Errorf("login rejected: code %d", body.Code)
	}
	if body.Code != 0 && body.Code != 1 && body.Code != 200 {
		return fmt.Errorf("login rejected: code %d", body.Code)
	}

	// The session token is the base64 of the login response's data object.
	c.mu.Lock()
	c.token = base64.StdEncoding.EncodeToString(body.Data)
	c.mu.Unlock()
	return nil
}

// InverterDataByColumn fetches one metric column for one inverter and day.
// On a 401/403 it re-authenticates once and retries the request; any other
// failure is returned to the caller, who degrades to an empty series.
func (c *Client) InverterDataByColumn(inverterID, column, date string) (map[string]interface{}, error) {
	c.mu.Lock()
	haveToken := c.token != ""
	c.mu.Unlock()
	if !haveToken {
		if err := c.Login(); err != nil {
			return nil, err
		}
	}

	result, status, err := c.fetchColumn(inverterID, column, date)
	if err == nil {
		return result, nil
	}
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return nil, err
	}

	// Token likely expired: log in again and retry the single failed request.
	if loginErr := c.Login(); loginErr != nil {
		return nil, fmt.Errorf("re-login after status %d failed: %w", status, loginErr)
	}
	result, status, err = c.fetchColumn(inverterID, column, date)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch of column %q failed after re-login: status %d", column, status)
	}
	return result, nil
}

// fetchColumn performs one data request. It returns the HTTP status alongside
// the decoded body so the caller can distinguish auth rejections.
func (c *Client) fetchColumn(inverterID, column, date string) (map[string]interface{}, int, error) {
	payload, _ := json.Marshal(map[string]string{
		"date":   date,
		"column": column,
		"id":     inverterID,
	})

	req, err := http.NewRequest(http.MethodPost, c.dataBaseURL+"/api/PowerStationMonitor/GetInverterDataByColumn", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build data request: %w", err)
	}
	c.mu.Lock()
	req.Header.Set("Token", c.token)
	c.mu.Unlock()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("data request for column %q failed: %w", column, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("data request for column %q: status %d", column, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode column %q response: %w", column, err)
	}
	return result, resp.StatusCode, nil
}
