// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// LiteratureSource retrieves bibliographic records and full text from the
// external metadata source. Every method takes a context for cancellation;
// empty ID-list inputs return empty results without an outbound call.
//
// Implementations are expected to cache responses and retry transient
// failures internally; an error from these methods means the call kind
// failed after its retry budget.
type LiteratureSource interface {
	// Search returns document IDs matching term, ordered by the given sort.
	Search(ctx context.Context, term string, limit int, sort string) ([]string, error)

	// Summary returns per-ID bibliographic metadata.
	Summary(ctx context.Context, ids []string) (map[string]domain.ArticleMeta, error)

	// Abstracts returns the merged abstract text per document ID.
	// Documents without an abstract are absent or empty, not errors.
	Abstracts(ctx context.Context, ids []string) (map[string]string, error)

	// FullTextLinks maps each document ID to the ID of its open full-text
	// counterpart, for documents that have one.
	FullTextLinks(ctx context.Context, ids []string) (map[string]string, error)

	// FullTextSections returns the named high-signal sections per full-text
	// document ID.
	FullTextSections(ctx context.Context, fulltextIDs []string) (domain.SectionMap, error)
}
