package covidapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL points to the public COVID-API (https://covid-api.com/)
const DefaultBaseURL = "https://covid-api.com/api"

type Region struct {
	Province *string `json:"province"`
}

// ProvinceName returns the province of the region or an empty string if it is not set
func (r *Region) ProvinceName() string {
	if r == nil || r.Province == nil {
		return ""
	}
	return *r.Province
}

// Report is a single row of the /reports response.
// Counts are plain JSON numbers and are not guaranteed to be integers.
type Report struct {
	Region    *Region `json:"region"`
	Confirmed float64 `json:"confirmed"`
	Deaths    float64 `json:"deaths"`
	Recovered float64 `json:"recovered"`
	Active    float64 `json:"active"`
}

type reportsResponse struct {
	Data []Report `json:"data"`
}

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("covid api returned unexpected code %d for %q", e.Code, e.URL)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. nil httpClient means http.DefaultClient
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) reportsURL(date, iso string) string {
	q := url.Values{}
	q.Set("date", date)
	q.Set("iso", iso)
	return fmt.Sprintf("%s/reports?%s", c.baseURL, q.Encode())
}

// Reports loads all report rows for the given day and ISO-3 country code.
// An absent or empty body yields an empty slice and no error.
func (c *Client) Reports(ctx context.Context, date, iso string) ([]Report, error) {
	u := c.reportsURL(date, iso)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request for %q: %w", u, err)
	}

	log.WithFields(log.Fields{"url": u}).Debug("Requesting covid reports")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %q failed: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read body of %q: %w", u, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return []Report{}, nil
	}

	var parsed reportsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("cannot parse body of %q: %w", u, err)
	}
	if parsed.Data == nil {
		return []Report{}, nil
	}
	return parsed.Data, nil
}
