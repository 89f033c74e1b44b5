package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/decoraops/quotation-service/internal/model"
)

var (
	ErrNetwork = errors.New("extraction service unreachable")
	ErrDecode  = errors.New("malformed extraction response")
)

// ServiceError is a non-2xx answer from the extraction service.
type ServiceError struct {
	StatusCode int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("extraction service returned status %d", e.StatusCode)
}

// Response is the wire shape of a successful extraction. All fields besides
// items are optional; absent values decode to their zero value.
type Response struct {
	QuotationID string           `json:"quotationId"`
	FileName    string           `json:"fileName"`
	Date        string           `json:"date"`
	Validity    string           `json:"validity"`
	Items       []model.LineItem `json:"items"`
	Pricing     *WirePricing     `json:"pricing"`
	Terms       []string         `json:"terms"`
}

type WirePricing struct {
	Subtotal       float64 `json:"subtotal"`
	TaxRate        float64 `json:"taxRate"`
	TaxAmount      float64 `json:"taxAmount"`
	DiscountRate   float64 `json:"discountRate"`
	DiscountAmount float64 `json:"discountAmount"`
	GrandTotal     float64 `json:"grandTotal"`
}

// ProgressFunc receives upload progress in percent, 0..100, monotonically
// non-decreasing. It may be nil.
type ProgressFunc func(pct int)

const sessionHeader = "X-Session-Id"

// Client calls the external extraction service that turns a raw document or
// text blob into matched line items.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
		log:     log,
	}
}

// Extract submits the artifact and blocks until the service answers. Transport
// failures (including a caller- or client-imposed timeout) map to ErrNetwork,
// non-2xx answers to *ServiceError, and an unparseable body to ErrDecode.
// None of the failure paths produce a partial response.
func (c *Client) Extract(ctx context.Context, artifact model.RawArtifact, sessionToken string, onProgress ProgressFunc) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := buildMultipart(artifact)
	if err != nil {
		return nil, err
	}

	reader := &progressReader{
		r:     bytes.NewReader(body),
		total: int64(len(body)),
		cb:    onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-image", reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))
	if sessionToken != "" {
		req.Header.Set(sessionHeader, sessionToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("extraction call failed")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &ServiceError{StatusCode: resp.StatusCode}
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &parsed, nil
}

func buildMultipart(artifact model.RawArtifact) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if artifact.HasFile() {
		part, err := writer.CreateFormFile("file", artifact.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(artifact.Data); err != nil {
			return nil, "", err
		}
	}
	if artifact.HasText() {
		if err := writer.WriteField("text", artifact.Text); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// progressReader reports the fraction of the request body handed to the
// transport. Reported percentages never decrease.
type progressReader struct {
	r     *bytes.Reader
	total int64
	sent  int64
	last  int
	cb    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.sent += int64(n)
	if p.cb != nil && p.total > 0 {
		pct := int(p.sent * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.cb(pct)
		}
	}
	return n, err
}
