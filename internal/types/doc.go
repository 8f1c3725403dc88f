/*
Package types defines core data structures shared across policyctl.

# Overview

The types package provides shared type definitions for:
  - Analysis modes and their fixed endpoints and labels
  - The request lifecycle (RequestState) and result panel (Display)
  - The input buffer snapshot and per-file read results
  - Analysis request/response wire bodies

# Modes

Exactly one Mode is active at a time:
  - translate: policy to natural language
  - simulate: answer a query against the policy (requires a query)
  - diagnose: policy health report

Each mode maps to POST /api/<mode>.

# Wire Format

Request:

	{"policy": "...", "query": "who can access D:"}

The query key is only present for simulate.

Response:

	{"success": true, "result": "## markdown narrative"}
	{"success": false, "error": "reason"}
*/
package types
