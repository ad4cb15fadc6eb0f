package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/muurk/fwbuild/internal/logging"
)

const (
	// DefaultFieldName is the multipart field carrying the firmware
	DefaultFieldName = "file"

	// maxBodySize caps how much of the server response is kept for reporting
	maxBodySize = 64 << 10
)

// Client posts firmware files to the upload endpoint.
type Client struct {
	// Endpoint is the upload URL without query parameters
	Endpoint string

	// FieldName is the multipart form field name (default: "file")
	FieldName string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for endpoint. A zero timeout means no timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint:   endpoint,
		FieldName:  DefaultFieldName,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Response is the server's answer to an upload.
type Response struct {
	StatusCode int
	Body       string
}

// OK reports whether the server accepted the upload.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// RequestURL returns the endpoint with the version and branch query
// parameters, in that order. Other parameters already on the endpoint
// follow them.
func (c *Client) RequestURL(version, branch string) (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid upload endpoint %q: %w", c.Endpoint, err)
	}

	q := u.Query()
	q.Del("version")
	q.Del("branch")

	query := "version=" + url.QueryEscape(version) + "&branch=" + url.QueryEscape(branch)
	if rest := q.Encode(); rest != "" {
		query += "&" + rest
	}
	u.RawQuery = query

	return u.String(), nil
}

// formBody frames the file as a single-part multipart form. The part
// header and closing boundary are built up front so the request carries
// an exact Content-Length.
func formBody(field, filename string, file io.Reader, size int64) (io.Reader, int64, string, error) {
	var buf bytes.Buffer

	form := multipart.NewWriter(&buf)
	if _, err := form.CreateFormFile(field, filename); err != nil {
		return nil, 0, "", err
	}
	headLen := buf.Len()
	if err := form.Close(); err != nil {
		return nil, 0, "", err
	}

	framing := buf.Bytes()
	head, tail := framing[:headLen], framing[headLen:]

	length := int64(len(framing)) + size
	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(file, size), bytes.NewReader(tail))
	return body, length, form.FormDataContentType(), nil
}

// Post uploads the file at path. Any HTTP status is returned as a
// Response; only transport failures are errors.
func (c *Client) Post(ctx context.Context, path, version, branch string) (*Response, error) {
	requestURL, err := c.RequestURL(version, branch)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open firmware file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat firmware file: %w", err)
	}
	size := info.Size()

	field := c.FieldName
	if field == "" {
		field = DefaultFieldName
	}

	body, length, contentType, err := formBody(field, filepath.Base(path), f, size)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)

	logging.LogHTTPRequest(req.Method, requestURL, size)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: requestURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: requestURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	logging.LogHTTPResponse(requestURL, resp.StatusCode, len(respBody))

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}
