package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/couchcryptid/groundwater-etl/internal/config"
	"github.com/couchcryptid/groundwater-etl/internal/domain"
)

// Query holds the request parameters of an instantaneous-values request.
type Query struct {
	StateCode   string
	StartDate   string
	EndDate     string
	SiteType    string
	ParameterCd string
}

// Client fetches groundwater time series from USGS Water Services.
// It implements pipeline.Fetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	query      Query
	logger     *slog.Logger
}

// NewClient creates a client for the configured region and time range.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.USGSTimeout},
		baseURL:    cfg.USGSBaseURL,
		query: Query{
			StateCode:   cfg.USGSStateCode,
			StartDate:   cfg.USGSStartDate,
			EndDate:     cfg.USGSEndDate,
			SiteType:    cfg.USGSSiteType,
			ParameterCd: cfg.USGSParameterCd,
		},
		logger: logger,
	}
}

// Fetch performs a single GET and decodes the whole response body.
// The default transport negotiates gzip and decompresses transparently.
func (c *Client) Fetch(ctx context.Context) (domain.RawResponse, error) {
	fullURL, err := c.requestURL()
	if err != nil {
		return domain.RawResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting usgs instantaneous values", "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("usgs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RawResponse{}, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	return domain.DecodeResponse(resp.Body)
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params := url.Values{
		"format":     {"json"},
		"stateCd":    {c.query.StateCode},
		"startDT":    {c.query.StartDate},
		"endDT":      {c.query.EndDate},
		"siteStatus": {"all"},
	}
	if c.query.SiteType != "" {
		params.Set("siteType", c.query.SiteType)
	}
	if c.query.ParameterCd != "" {
		params.Set("parameterCd", c.query.ParameterCd)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
