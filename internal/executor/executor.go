package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/types"
)

const (
	// DefaultBaseURL is where the analysis service listens by default
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds a single analysis request
	DefaultTimeout = 120 * time.Second

	// maxResponseSize caps the response body read into memory (32 MiB)
	maxResponseSize = 32 << 20
	// RequestIDHeader carries the per-submission id
	RequestIDHeader = "X-Request-Id"
)

// Options configures a Client
type Options struct {
	Timeout time.Duration // 0 disables the client timeout
	TLS     *types.TLSConfig
	Logger  *logrus.Entry
}

// Result is a decoded response plus transport metadata
type Result struct {
	Response  types.AnalysisResponse
	Status    int
	Duration  int64 // milliseconds
	Size      int
	RequestID string
}

// Client sends analysis requests to the service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	httpClient, err := buildHTTPClient(opts.TLS, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "executor")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze posts req to the endpoint of mode. It makes exactly one attempt.
// A response whose body decodes is returned even when it reports failure;
// connection problems return *TransportError and undecodable bodies
// return *DecodeError.
func (c *Client) Analyze(ctx context.Context, mode types.Mode, req types.AnalysisRequest) (*Result, error) {
	endpoint := c.baseURL + mode.Endpoint()
	requestID := uuid.New().String()
	startTime := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.WithFields(logrus.Fields{
		"mode":       mode,
		"endpoint":   endpoint,
		"request_id": requestID,
	})
	logger.WithField("size", len(payload)).Info("sending analysis request")

	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		logger.WithError(err).Warn("analysis request failed")
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		logger.WithError(err).Warn("failed to read response body")
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	decoded, err := decodeResponse(resp.StatusCode, bodyBytes)
	if err != nil {
		logger.WithError(err).WithField("status", resp.StatusCode).Warn("undecodable analysis response")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"success":  decoded.Success,
		"duration": FormatDuration(duration),
		"size":     FormatSize(len(bodyBytes)),
	}).Info("analysis response received")

	return &Result{
		Response:  *decoded,
		Status:    resp.StatusCode,
		Duration:  duration,
		Size:      len(bodyBytes),
		RequestID: requestID,
	}, nil
}

// decodeResponse parses the response body. Anything that is not a JSON
// object of the expected shape is a DecodeError.
func decodeResponse(status int, body []byte) (*types.AnalysisResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Status: status, Err: fmt.Errorf("empty response body")}
	}

	// null unmarshals into a zero value without error
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, &DecodeError{Status: status, Err: fmt.Errorf("response body is null"), Snippet: "null"}
	}

	var decoded types.AnalysisResponse
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, &DecodeError{Status: status, Err: err, Snippet: snippet(trimmed)}
	}
	return &decoded, nil
}

func snippet(body []byte) string {
	const maxLen = 120
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration
func buildHTTPClient(tlsConfig *types.TLSConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if !tlsConfig.IsZero() {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}
