package mock

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the mock analysis server configuration
type Config struct {
	Port      int        `json:"port" yaml:"port"`                               // Server port (default: 8000)
	Host      string     `json:"host" yaml:"host"`                               // Server host (default: localhost)
	Responses []Response `json:"responses,omitempty" yaml:"responses,omitempty"` // Canned responses, first match wins
	Logging   bool       `json:"logging" yaml:"logging"`                         // Keep a request log
}

// Response is a canned answer for one analysis mode
type Response struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`             // Response description
	Mode       string `json:"mode" yaml:"mode"`                                 // translate, simulate, or diagnose
	Match      string `json:"match,omitempty" yaml:"match,omitempty"`           // Substring the policy or query must contain
	Status     int    `json:"status,omitempty" yaml:"status,omitempty"`         // HTTP status code (default: 200)
	Result     string `json:"result,omitempty" yaml:"result,omitempty"`         // Markdown narrative
	ResultFile string `json:"resultFile,omitempty" yaml:"resultFile,omitempty"` // Path to a markdown narrative
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`           // Reported failure; makes the response unsuccessful
	Raw        string `json:"raw,omitempty" yaml:"raw,omitempty"`               // Body sent verbatim, bypassing the envelope
	Delay      int    `json:"delay,omitempty" yaml:"delay,omitempty"`           // Response delay in milliseconds
}

// RequestLog represents a logged analysis request
type RequestLog struct {
	Seq         int           `json:"seq"`
	Timestamp   time.Time     `json:"timestamp"`
	RequestID   string        `json:"requestId"`
	Mode        string        `json:"mode"`
	PolicySize  int           `json:"policySize"`
	Query       string        `json:"query,omitempty"`
	Products    []string      `json:"products,omitempty"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Duration    time.Duration `json:"duration"`
}

// String is the one-line form printed by `policyctl mock`
func (l RequestLog) String() string {
	products := "no known products"
	if len(l.Products) > 0 {
		products = strings.Join(l.Products, ", ")
	}
	line := fmt.Sprintf("%s %s %d | %s | rule: %s | %d bytes | %s",
		l.Timestamp.Format("15:04:05"), l.Mode, l.Status, products, l.MatchedRule,
		l.PolicySize, l.Duration.Round(time.Millisecond))
	if l.Query != "" {
		line += fmt.Sprintf(" | query: %q", l.Query)
	}
	return line
}
