// Package connectors groups clients for external literature sources. Each
// connector knows how to query one upstream service and map its responses
// onto the core domain types.
package connectors
