// Package entrez implements a thin, resilient client for the NCBI
// E-utilities (PubMed / PMC):
//
//   - attaches etiquette params (tool, email, api_key) to every call
//   - proactively rate limits per NCBI policy (3 req/s, 10 with a key)
//   - retries with jittered exponential backoff on transient failures
//   - caches each call kind in an injected TTL cache tier
//   - tolerantly extracts abstracts and full-text sections from the
//     returned XML, matching elements by local name only
package entrez
