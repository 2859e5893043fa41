// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultEndpoint is the default Kaggle hub URL.
const DefaultEndpoint = "https://www.kaggle.com"

// Endpoint returns the endpoint to use, falling back to the environment
// and then the default.
func Endpoint(endpoint string) string {
	if endpoint == "" {
		endpoint = os.Getenv("KAGGLE_API_ENDPOINT")
	}
	if endpoint == "" {
		return DefaultEndpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

// credentials holds the basic-auth pair sent to the hub.
type credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// resolveCredentials picks credentials from settings, the environment or
// kaggle.json, in that order. A zero value means anonymous access.
func resolveCredentials(cfg Settings) credentials {
	if cfg.Username != "" || cfg.Key != "" {
		return credentials{Username: cfg.Username, Key: cfg.Key}
	}
	if u, k := os.Getenv("KAGGLE_USERNAME"), os.Getenv("KAGGLE_KEY"); u != "" && k != "" {
		return credentials{Username: u, Key: k}
	}

	dir := os.Getenv("KAGGLE_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return credentials{}
		}
		dir = filepath.Join(home, ".kaggle")
	}
	b, err := os.ReadFile(filepath.Join(dir, "kaggle.json"))
	if err != nil {
		return credentials{}
	}
	var c credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return credentials{}
	}
	return c
}

// buildHTTPClient creates an HTTP client with sensible defaults.
func buildHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr}
}

// addAuth adds authentication and user-agent headers to a request.
func addAuth(req *http.Request, creds credentials) {
	if creds.Username != "" || creds.Key != "" {
		req.SetBasicAuth(creds.Username, creds.Key)
	}
	req.Header.Set("User-Agent", "rawfetch/1")
}

// checkResponse converts a non-2xx response into an *APIError.
// The body is drained but not closed.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        resp.Request.URL.String(),
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

// getJSON issues an authenticated GET and decodes the JSON response into v.
func getJSON(ctx context.Context, httpc *http.Client, creds credentials, urlStr string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return err
	}
	addAuth(req, creds)
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// resolveVersion returns the pinned version or asks the hub for the
// current one.
func resolveVersion(ctx context.Context, httpc *http.Client, creds credentials, endpoint string, h Handle) (int, error) {
	if h.Version > 0 {
		return h.Version, nil
	}
	var view struct {
		CurrentVersionNumber int `json:"currentVersionNumber"`
	}
	if err := getJSON(ctx, httpc, creds, viewURL(endpoint, h), &view); err != nil {
		return 0, err
	}
	if view.CurrentVersionNumber <= 0 {
		return 0, fmt.Errorf("dataset %s has no published version", h)
	}
	return view.CurrentVersionNumber, nil
}

// URL builders

func viewURL(endpoint string, h Handle) string {
	return fmt.Sprintf("%s/api/v1/datasets/view/%s/%s",
		Endpoint(endpoint), url.PathEscape(h.Owner), url.PathEscape(h.Dataset))
}

func downloadURL(endpoint string, h Handle, version int) string {
	return fmt.Sprintf("%s/api/v1/datasets/download/%s/%s?datasetVersionNumber=%d",
		Endpoint(endpoint), url.PathEscape(h.Owner), url.PathEscape(h.Dataset), version)
}

func listURL(endpoint string, h Handle, version int, pageToken string) string {
	q := url.Values{}
	q.Set("datasetVersionNumber", fmt.Sprint(version))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return fmt.Sprintf("%s/api/v1/datasets/list/%s/%s?%s",
		Endpoint(endpoint), url.PathEscape(h.Owner), url.PathEscape(h.Dataset), q.Encode())
}
