// Package mcp provides an MCP (Model Context Protocol) server adapter for
// the clearcite pipeline. It lets AI assistants search PubMed, select ranked
// evidence and request grounded answers as tools.
package mcp

import "errors"

// ErrMissingEvidenceService is returned when the evidence service is not provided.
var ErrMissingEvidenceService = errors.New("mcp: evidence service is required")
