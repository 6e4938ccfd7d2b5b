package entrez

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(
		Config{BaseURL: srv.URL + "/", Email: "dev@example.org", Tool: "clearcite-test"},
		WithRetry(fastRetry()),
	)
}

func TestSearch_ParsesAndCaches(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		assert.Equal(t, "aspirin", r.URL.Query().Get("term"))
		assert.Equal(t, "7", r.URL.Query().Get("retmax"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
		assert.Equal(t, "clearcite-test", r.URL.Query().Get("tool"))
		assert.Equal(t, "dev@example.org", r.URL.Query().Get("email"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"esearchresult":{"idlist":["1","2","3"]}}`))
	}))

	pmids, err := c.Search(context.Background(), "aspirin", 7, "relevance")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, pmids)

	// Second identical call is served from the short tier.
	pmids, err = c.Search(context.Background(), "aspirin", 7, "relevance")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, pmids)
	assert.Equal(t, int32(1), calls.Load())

	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.Counters["cache.hit.esearch"])
	assert.Equal(t, int64(1), snap.Counters["cache.miss.esearch"])
	assert.Equal(t, int64(1), snap.Counters["entrez.esearch.count"])
}

func TestSearch_EmptyResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult":{}}`))
	}))
	pmids, err := c.Search(context.Background(), "nonsense", 5, "relevance")
	require.NoError(t, err)
	assert.Empty(t, pmids)
	assert.NotNil(t, pmids)
}

func TestSummary_ParsesDocuments(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esummary.fcgi", r.URL.Path)
		assert.Equal(t, "10,20", r.URL.Query().Get("id"))
		w.Write([]byte(`{"result":{
			"uids":["10","20"],
			"10":{"title":"Cats","fulljournalname":"J Feline","pubdate":"2021 Mar","elocationid":"doi: 10.1/abc","pubtype":["Review"]},
			"20":{"title":"Dogs","source":"J Canine","epubdate":"2019 Jan"}
		}}`))
	}))

	meta, err := c.Summary(context.Background(), []string{"10", "20"})
	require.NoError(t, err)
	require.Len(t, meta, 2)
	assert.Equal(t, "Cats", meta["10"].Title)
	assert.Equal(t, "J Feline", meta["10"].FullJournalName)
	assert.Equal(t, []string{"Review"}, meta["10"].PubTypes)
	assert.Equal(t, "doi: 10.1/abc", meta["10"].ELocationID)
	assert.Equal(t, "J Canine", meta["20"].Source)
	assert.Equal(t, "2019 Jan", meta["20"].EPubDate)
}

func TestEmptyIDListsShortCircuit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no outbound call expected")
	}))
	ctx := context.Background()

	meta, err := c.Summary(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, meta)

	abs, err := c.Abstracts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, abs)

	links, err := c.FullTextLinks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, links)

	secs, err := c.FullTextSections(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, secs)
}

func TestAbstracts_FetchesAndParses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		assert.Equal(t, "abstract", r.URL.Query().Get("rettype"))
		w.Write([]byte(sampleEFetchXML))
	}))

	abs, err := c.Abstracts(context.Background(), []string{"12345678"})
	require.NoError(t, err)
	assert.Contains(t, abs["12345678"], "We observed 10 cats.")
}

func TestFullTextSections_FetchesAndParses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "pmc", r.URL.Query().Get("db"))
		w.Write([]byte(samplePMC))
	}))

	secs, err := c.FullTextSections(context.Background(), []string{"9999999"})
	require.NoError(t, err)
	require.Contains(t, secs, "9999999")
	assert.Contains(t, secs["9999999"]["Methods"], "zebrafish")
}

func TestRetry_RecoversFromTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"esearchresult":{"idlist":["9"]}}`))
	}))

	pmids, err := c.Search(context.Background(), "flaky", 5, "relevance")
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, pmids)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_ExhaustionReturnsFetchError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.Search(context.Background(), "down", 5, "relevance")
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, kindSearch, fe.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestContextCancellationAborts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "anything", 5, "relevance")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAPIKeyAttachedAndKeyPartitioned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekrit", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"esearchresult":{"idlist":["1"]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", APIKey: "sekrit"}, WithRetry(fastRetry()))
	_, err := c.Search(context.Background(), "x", 1, "relevance")
	require.NoError(t, err)

	assert.NotEqual(t,
		searchKey("x", 1, "relevance", true),
		searchKey("x", 1, "relevance", false))
}
