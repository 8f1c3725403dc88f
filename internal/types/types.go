package types

import "strings"

// InputBuffer is a point-in-time copy of the policy input buffer
type InputBuffer struct {
	Text            string `json:"text"`
	SourceFileCount int    `json:"sourceFileCount"`
}

// FileReadResult holds the outcome of reading one file of an ingestion batch.
// Index is the file's position in the batch, not its completion order.
type FileReadResult struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Err     error  `json:"-"`
}

// Failed reports whether the read did not complete successfully
func (r FileReadResult) Failed() bool {
	return r.Err != nil
}

// Empty reports whether the file contributes no content once trimmed
func (r FileReadResult) Empty() bool {
	return strings.TrimSpace(r.Content) == ""
}

// AnalysisRequest is the JSON body sent to an analysis endpoint
type AnalysisRequest struct {
	Policy string `json:"policy"`
	Query  string `json:"query,omitempty"` // simulate only
}

// AnalysisResponse is the JSON body returned by an analysis endpoint
type AnalysisResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnalysisResult is the last successfully rendered output.
// Raw is kept verbatim so it can be copied after rendering.
type AnalysisResult struct {
	Mode      Mode   `json:"mode"`
	Raw       string `json:"raw"`
	Duration  int64  `json:"durationMs"`
	RequestID string `json:"requestId,omitempty"`
}

// TLSConfig represents TLS/mTLS settings for the analysis client
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"cert_file,omitempty" mapstructure:"cert_file"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"key_file,omitempty" mapstructure:"key_file"`
	CAFile             string `json:"caFile,omitempty" yaml:"ca_file,omitempty" mapstructure:"ca_file"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecure_skip_verify,omitempty" mapstructure:"insecure_skip_verify"`
}

// IsZero reports whether no TLS option is set
func (c *TLSConfig) IsZero() bool {
	return c == nil || (c.CertFile == "" && c.KeyFile == "" && c.CAFile == "" && !c.InsecureSkipVerify)
}
