/*
Package executor sends policy analysis requests to the analysis service.

# Overview

Each analysis mode maps to one endpoint:

	POST /api/translate   {"policy": "..."}
	POST /api/simulate    {"policy": "...", "query": "..."}
	POST /api/diagnose    {"policy": "..."}

Responses are {"success": true, "result": "..."} or
{"success": false, "error": "..."}.

# Error Handling

Analyze separates three outcomes:
  - a decoded body (success or server-reported failure), returned as *Result
  - *TransportError: connection failures, timeouts, cancelled contexts
  - *DecodeError: a response whose body is not the expected JSON object

A non-2xx status with a decodable {"success": false} body is a
server-reported failure, not a transport error.

# Retries and Timeouts

A request is attempted once. The caller resubmits. The client timeout
comes from configuration (0 disables it); cancellation follows the context.

# TLS Configuration

TLS support includes:
  - Custom CA certificates
  - Client certificates (mTLS)
  - InsecureSkipVerify for development

# Example Usage

	client, err := executor.NewClient("http://localhost:8000", executor.Options{
		Timeout: 2 * time.Minute,
	})
	if err != nil {
		return err
	}

	res, err := client.Analyze(ctx, types.ModeSimulate, types.AnalysisRequest{
		Policy: policyText,
		Query:  "who can access D:",
	})
*/
package executor
