package entrez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clearcite/clearcite-cli/internal/cache"
	"github.com/clearcite/clearcite-cli/internal/core/domain"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driven"
	"github.com/clearcite/clearcite-cli/internal/logger"
	"github.com/clearcite/clearcite-cli/internal/metrics"
)

// DefaultBaseURL is the production E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// DefaultTool identifies this client to NCBI when none is configured.
const DefaultTool = "clearcite-cli"

// Call kinds. They name the cache key partition, the FetchError origin and
// (with dots mapped to underscores) the metric key for each E-utility.
const (
	kindSearch   = "esearch"
	kindSummary  = "esummary"
	kindAbstract = "efetch.pubmed"
	kindLink     = "elink.pmc"
	kindFulltext = "efetch.pmc"
)

// Response cache tiers. Search results are volatile and live in a small
// short-TTL tier; metadata and fetched payloads share a larger tier.
const (
	ShortCacheItems = 512
	ShortCacheTTL   = 2 * time.Minute
	StdCacheItems   = 2048
	StdCacheTTL     = 10 * time.Minute
)

// HTTP timeouts: JSON endpoints answer quickly, full-text XML can be slow.
const (
	jsonTimeout = 30 * time.Second
	textTimeout = 60 * time.Second
)

// Config carries the client's endpoint and etiquette identity.
type Config struct {
	// BaseURL overrides the E-utilities endpoint. Empty means production.
	BaseURL string

	// APIKey raises the request budget from 3 to 10 req/s when set.
	APIKey string

	// Email identifies the operator to NCBI.
	Email string

	// Tool identifies the calling application to NCBI.
	Tool string
}

// Client is a thin, resilient E-utilities client. All outbound calls are
// rate limited, retried with jittered backoff and cached; parse helpers are
// tolerant of malformed XML. Safe for concurrent use.
type Client struct {
	cfg     Config
	json    *http.Client
	text    *http.Client
	limiter *RateLimiter
	retry   RetryConfig
	short   *cache.Cache[Key, any]
	std     *cache.Cache[Key, any]
	reg     *metrics.Registry
}

var _ driven.LiteratureSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithCaches injects the short and standard response tiers so several
// clients (or tests) can share or replace them.
func WithCaches(short, std *cache.Cache[Key, any]) Option {
	return func(c *Client) {
		if short != nil {
			c.short = short
		}
		if std != nil {
			c.std = std
		}
	}
}

// WithMetrics injects a shared metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) {
		if reg != nil {
			c.reg = reg
		}
	}
}

// WithRetry overrides the retry policy. Useful for fast-failing tests.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// New creates a Client for the given identity. Zero-valued config fields
// fall back to production defaults.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	c := &Client{
		cfg:     cfg,
		json:    &http.Client{Timeout: jsonTimeout},
		text:    &http.Client{Timeout: textTimeout},
		limiter: NewRateLimiter(cfg.APIKey != ""),
		retry:   DefaultRetryConfig(),
		short:   cache.New[Key, any](ShortCacheItems, ShortCacheTTL),
		std:     cache.New[Key, any](StdCacheItems, StdCacheTTL),
		reg:     metrics.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// keyed reports whether an API key is attached to requests.
func (c *Client) keyed() bool { return c.cfg.APIKey != "" }

// ----------------------------- PubMed -----------------------------

// Search queries PubMed and returns matching PMIDs in the given sort order.
func (c *Client) Search(ctx context.Context, term string, limit int, sort string) ([]string, error) {
	key := searchKey(term, limit, sort, c.keyed())
	if v, ok := c.short.Get(key); ok {
		c.reg.Inc("cache.hit.esearch")
		return v.([]string), nil
	}
	c.reg.Inc("cache.miss.esearch")

	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("term", term)
	q.Set("retmode", "json")
	q.Set("retmax", strconv.Itoa(limit))
	q.Set("sort", sort)

	t0 := time.Now()
	body, err := c.getJSON(ctx, kindSearch, "esearch.fcgi", q)
	if err != nil {
		return nil, err
	}
	var payload struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Kind: kindSearch, Err: fmt.Errorf("decode response: %w", err)}
	}
	pmids := payload.ESearchResult.IDList
	if pmids == nil {
		pmids = []string{}
	}

	c.short.Set(key, pmids)
	c.observe(kindSearch, t0)
	return pmids, nil
}

// summaryRecord mirrors the esummary JSON document shape.
type summaryRecord struct {
	Title           string   `json:"title"`
	FullJournalName string   `json:"fulljournalname"`
	Source          string   `json:"source"`
	PubDate         string   `json:"pubdate"`
	EPubDate        string   `json:"epubdate"`
	ELocationID     string   `json:"elocationid"`
	PubType         []string `json:"pubtype"`
}

// Summary fetches bibliographic metadata (title, journal, pubdate, DOI,
// publication types) for the given PMIDs.
func (c *Client) Summary(ctx context.Context, pmids []string) (map[string]domain.ArticleMeta, error) {
	if len(pmids) == 0 {
		return map[string]domain.ArticleMeta{}, nil
	}
	key := idsKey(kindSummary, pmids, c.keyed())
	if v, ok := c.std.Get(key); ok {
		c.reg.Inc("cache.hit.esummary")
		return v.(map[string]domain.ArticleMeta), nil
	}
	c.reg.Inc("cache.miss.esummary")

	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("id", strings.Join(pmids, ","))
	q.Set("retmode", "json")

	t0 := time.Now()
	body, err := c.getJSON(ctx, kindSummary, "esummary.fcgi", q)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Kind: kindSummary, Err: fmt.Errorf("decode response: %w", err)}
	}

	meta := make(map[string]domain.ArticleMeta, len(pmids))
	for uid, raw := range payload.Result {
		if uid == "uids" {
			continue
		}
		var rec summaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			// Tolerate odd per-document payloads rather than failing the batch.
			logger.Warn("esummary: skipping malformed document %s: %v", uid, err)
			continue
		}
		meta[uid] = domain.ArticleMeta{
			Title:           rec.Title,
			FullJournalName: rec.FullJournalName,
			Source:          rec.Source,
			PubDate:         rec.PubDate,
			EPubDate:        rec.EPubDate,
			ELocationID:     rec.ELocationID,
			PubTypes:        rec.PubType,
		}
	}

	c.std.Set(key, meta)
	c.observe(kindSummary, t0)
	return meta, nil
}

// AbstractXML fetches PubMed abstracts for the given PMIDs as raw EFetch
// XML. The unparsed document is cached and returned so callers can apply
// their own extraction.
func (c *Client) AbstractXML(ctx context.Context, pmids []string) (string, error) {
	if len(pmids) == 0 {
		return "", nil
	}
	key := idsKey(kindAbstract, pmids, c.keyed())
	if v, ok := c.std.Get(key); ok {
		c.reg.Inc("cache.hit.efetch_pubmed")
		return v.(string), nil
	}
	c.reg.Inc("cache.miss.efetch_pubmed")

	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("id", strings.Join(pmids, ","))
	q.Set("retmode", "xml")
	q.Set("rettype", "abstract")

	t0 := time.Now()
	xmlText, err := c.getText(ctx, kindAbstract, "efetch.fcgi", q)
	if err != nil {
		return "", err
	}
	c.std.Set(key, xmlText)
	c.observe(kindAbstract, t0)
	return xmlText, nil
}

// Abstracts returns the merged abstract text per PMID.
func (c *Client) Abstracts(ctx context.Context, pmids []string) (map[string]string, error) {
	xmlText, err := c.AbstractXML(ctx, pmids)
	if err != nil {
		return nil, err
	}
	return ParseAbstracts(xmlText), nil
}

// ----------------------------- PMC -----------------------------

// FullTextLinks maps each PMID to the numeric PMCID of its open-access
// full text, when one exists.
func (c *Client) FullTextLinks(ctx context.Context, pmids []string) (map[string]string, error) {
	if len(pmids) == 0 {
		return map[string]string{}, nil
	}
	key := idsKey(kindLink, pmids, c.keyed())
	if v, ok := c.std.Get(key); ok {
		c.reg.Inc("cache.hit.elink_pmc")
		return v.(map[string]string), nil
	}
	c.reg.Inc("cache.miss.elink_pmc")

	q := url.Values{}
	q.Set("dbfrom", "pubmed")
	q.Set("linkname", "pubmed_pmc")
	q.Set("id", strings.Join(pmids, ","))

	t0 := time.Now()
	xmlText, err := c.getText(ctx, kindLink, "elink.fcgi", q)
	if err != nil {
		return nil, err
	}
	links := ParseFullTextLinks(xmlText)

	c.std.Set(key, links)
	c.observe(kindLink, t0)
	return links, nil
}

// FulltextXML fetches PMC full-text NXML for the given numeric PMCIDs
// (no "PMC" prefix in the request). The raw document is cached.
func (c *Client) FulltextXML(ctx context.Context, pmcids []string) (string, error) {
	if len(pmcids) == 0 {
		return "", nil
	}
	key := idsKey(kindFulltext, pmcids, c.keyed())
	if v, ok := c.std.Get(key); ok {
		c.reg.Inc("cache.hit.efetch_pmc")
		return v.(string), nil
	}
	c.reg.Inc("cache.miss.efetch_pmc")

	q := url.Values{}
	q.Set("db", "pmc")
	q.Set("id", strings.Join(pmcids, ","))
	q.Set("retmode", "xml")

	t0 := time.Now()
	xmlText, err := c.getText(ctx, kindFulltext, "efetch.fcgi", q)
	if err != nil {
		return "", err
	}
	c.std.Set(key, xmlText)
	c.observe(kindFulltext, t0)
	return xmlText, nil
}

// FullTextSections returns the high-signal sections per PMCID.
func (c *Client) FullTextSections(ctx context.Context, pmcids []string) (domain.SectionMap, error) {
	xmlText, err := c.FulltextXML(ctx, pmcids)
	if err != nil {
		return nil, err
	}
	return ParseSections(xmlText), nil
}

// ----------------------------- internals -----------------------------

// statusError marks a non-2xx response inside the retry loop so the final
// FetchError can surface the last HTTP status.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (c *Client) getJSON(ctx context.Context, kind, path string, q url.Values) ([]byte, error) {
	return c.get(ctx, c.json, kind, path, q)
}

func (c *Client) getText(ctx context.Context, kind, path string, q url.Values) (string, error) {
	body, err := c.get(ctx, c.text, kind, path, q)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// get performs one rate-limited, retried GET against the E-utilities
// endpoint with the etiquette params attached.
func (c *Client) get(ctx context.Context, hc *http.Client, kind, path string, q url.Values) ([]byte, error) {
	q.Set("tool", c.cfg.Tool)
	q.Set("email", c.cfg.Email)
	if c.cfg.APIKey != "" {
		q.Set("api_key", c.cfg.APIKey)
	}
	endpoint := c.cfg.BaseURL + path + "?" + q.Encode()

	body, err := retryWithBackoff(ctx, c.retry, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", fmt.Sprintf("%s (%s)", c.cfg.Tool, c.cfg.Email))

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return nil, &statusError{code: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		fe := &FetchError{Kind: kind, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			fe.StatusCode = se.code
		}
		logger.Warn("entrez %s failed: %v", kind, fe)
		return nil, fe
	}
	return body, nil
}

// observe records the latency and count of one completed outbound call.
func (c *Client) observe(kind string, t0 time.Time) {
	name := strings.ReplaceAll(kind, ".", "_")
	c.reg.Observe("entrez."+name+".ms", time.Since(t0))
	c.reg.Inc("entrez." + name + ".count")
}

// Metrics exposes the client's registry for surfacing in status output.
func (c *Client) Metrics() *metrics.Registry {
	return c.reg
}
