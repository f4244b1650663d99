package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/logger"
)

// maxErrorBody bounds how much of a failed response body is kept for the error message.
const maxErrorBody = 512

// Client talks to the file registry.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewClient creates a registry client for baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger.Named("registry"),
	}
}

// DownloadLocation is a short-lived URL for the rendered asset.
type DownloadLocation struct {
	URL       string `json:"download_url"`
	ExpiresIn int    `json:"expires_in"` // Seconds
}

// Expiry returns the absolute expiry for a location received at now.
func (d DownloadLocation) Expiry(now time.Time) time.Time {
	return now.Add(time.Duration(d.ExpiresIn) * time.Second)
}

// FileRecord is the registry's description of an uploaded file.
type FileRecord struct {
	UUID         string          `json:"uuid"`
	Filename     string          `json:"filename"`
	FileSize     *int64          `json:"file_size,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	MetadataJSON json.RawMessage `json:"metadata_json,omitempty"`
}

// ValidateID checks that id is a UUID and returns its canonical form.
func ValidateID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidID, id, err)
	}
	return u.String(), nil
}

// DownloadLocation resolves the download URL for the rendered asset of id.
func (c *Client) DownloadLocation(ctx context.Context, id string) (DownloadLocation, error) {
	var loc DownloadLocation
	if err := c.getJSON(ctx, id, "/render/download-url", &loc); err != nil {
		return DownloadLocation{}, err
	}
	if loc.URL == "" {
		return DownloadLocation{}, transportErr("registry returned an empty download url for %s", id)
	}
	c.log.Debug("resolved download location", zap.String("asset", id), zap.Int("expires_in", loc.ExpiresIn))
	return loc, nil
}

// FileRecord fetches the registry record of id, including its metadata tree.
func (c *Client) FileRecord(ctx context.Context, id string) (FileRecord, error) {
	var rec FileRecord
	if err := c.getJSON(ctx, id, "", &rec); err != nil {
		return FileRecord{}, err
	}
	return rec, nil
}

func (c *Client) getJSON(ctx context.Context, id, suffix string, out any) error {
	canonical, err := ValidateID(id)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/v1/files/%s%s", c.baseURL, url.PathEscape(canonical), suffix)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer c.closeBody(resp)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr("decoding %s: %v", endpoint, err)
	}
	return nil
}

// get issues a GET and returns the response only for 2xx statuses.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportErr("creating request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportErr("request failed: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.closeBody(resp)
		return nil, &StatusError{URL: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Warn("failed to close response body", zap.Error(err))
	}
}
