package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultURLTemplate is the transport.rest departures endpoint.
const DefaultURLTemplate = "https://1.bvg.transport.rest/stations/{stop}/departures?duration={duration}"

// Client retrieves the departures of a stop over HTTP.
// Timeouts are enforced by the underlying http.Client.
type Client struct {
	httpClient  *http.Client
	urlTemplate string
	format      string
	location    *time.Location
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithFormat selects the wire format (FormatJSON or FormatGTFSRT).
func WithFormat(format string) ClientOption {
	return func(c *Client) { c.format = format }
}

// WithLocation sets the zone used for feed timestamps that carry no offset.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) { c.location = loc }
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// NewClient creates a client for urlTemplate. The template may contain {stop} and
// {duration} placeholders; an empty template selects DefaultURLTemplate.
func NewClient(urlTemplate string, opts ...ClientOption) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		urlTemplate: urlTemplate,
		format:      FormatJSON,
		location:    time.UTC,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL renders the request URL for a stop and horizon.
func (c *Client) URL(stopID string, horizon time.Duration) string {
	r := strings.NewReplacer(
		"{stop}", url.PathEscape(stopID),
		"{duration}", strconv.Itoa(int(horizon/time.Minute)),
	)
	return r.Replace(c.urlTemplate)
}

// Departures performs one live retrieval. Transport failures are reported as
// *NetworkError, undecodable bodies as *ParseError.
func (c *Client) Departures(ctx context.Context, stopID string, horizon time.Duration) (RawFeed, error) {
	u := c.URL(stopID, horizon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.format == FormatGTFSRT {
		req.Header.Set("Accept", "application/x-protobuf")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: u, Cause: err}
	}
	return Decode(c.format, body, stopID, c.location)
}
