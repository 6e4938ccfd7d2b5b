package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// rankingFlags are the tuning knobs shared by select and answer.
type rankingFlags struct {
	limit           int
	chunkChars      int
	overlap         int
	topK            int
	alpha           float64
	noSemantic      bool
	freshnessWeight float64
	halfLifeYears   float64
	preferTypes     []string
	noFullText      bool
	sections        []string
}

// register adds the shared ranking flags to cmd.
func (f *rankingFlags) register(cmd *cobra.Command) {
	defaults := domain.DefaultSelectOptions()
	cmd.Flags().IntVarP(&f.limit, "limit", "n", defaults.Limit, "maximum number of PubMed records to retrieve")
	cmd.Flags().IntVar(&f.chunkChars, "chunk-chars", defaults.ChunkChars, "approximate character budget per chunk")
	cmd.Flags().IntVar(&f.overlap, "overlap", defaults.Overlap, "soft character overlap between consecutive chunks")
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", defaults.TopK, "number of evidence chunks to keep")
	cmd.Flags().Float64Var(&f.alpha, "alpha", defaults.Alpha, "weight of semantic similarity in hybrid scoring (0 = lexical only)")
	cmd.Flags().BoolVar(&f.noSemantic, "no-semantic", false, "disable semantic similarity scoring")
	cmd.Flags().Float64Var(&f.freshnessWeight, "freshness-weight", defaults.FreshnessWeight, "blend weight for recency (0..1)")
	cmd.Flags().Float64Var(&f.halfLifeYears, "half-life", defaults.HalfLifeYears, "recency decay half-life in years")
	cmd.Flags().StringSliceVar(&f.preferTypes, "prefer-types", nil, "study types to up-weight (e.g. RCT,Meta-analysis)")
	cmd.Flags().BoolVar(&f.noFullText, "no-fulltext", false, "skip open-access PMC full text")
	cmd.Flags().StringSliceVar(&f.sections, "sections", domain.DefaultSections, "full-text sections to include")
}

// toOptions maps the flags onto pipeline options.
func (f *rankingFlags) toOptions() domain.SelectOptions {
	return domain.SelectOptions{
		Limit:           f.limit,
		ChunkChars:      f.chunkChars,
		Overlap:         f.overlap,
		TopK:            f.topK,
		Alpha:           f.alpha,
		UseSemantic:     !f.noSemantic,
		FreshnessWeight: f.freshnessWeight,
		HalfLifeYears:   f.halfLifeYears,
		PreferTypes:     f.preferTypes,
		WantFullText:    !f.noFullText,
		IncludeSections: f.sections,
	}
}

var (
	selectFlags rankingFlags
	selectJSON  bool
)

var selectCmd = &cobra.Command{
	Use:   "select [term]",
	Short: "Select the top-ranked evidence chunks for a query",
	Long: `Runs the end-to-end evidence pipeline: search PubMed, fetch metadata,
abstracts and open-access PMC full text, chunk the text, rank it with
hybrid lexical+semantic scoring plus freshness and study-type boosts,
and print the top-k evidence chunks with de-duplicated references.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectFlags.register(selectCmd)
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	set, err := evidenceService.SelectEvidence(cmd.Context(), args[0], selectFlags.toOptions())
	if err != nil {
		if errors.Is(err, domain.ErrNoEvidence) {
			if selectJSON {
				return printJSON(cmd, domain.EvidenceSet{
					Query:      args[0],
					Chunks:     []domain.ScoredChunk{},
					References: []domain.Reference{},
				})
			}
			cmd.Println("No evidence found.")
			return nil
		}
		return fmt.Errorf("evidence selection failed: %w", err)
	}

	if selectJSON {
		return printJSON(cmd, set)
	}

	cmd.Printf("Evidence for %q (semantic scoring: %t)\n\n", set.Query, set.UsedSemantic)
	for i, ch := range set.Chunks {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, ch.Title, ch.Score)
		cmd.Printf("      %s | %s | %s", ch.ChunkID, ch.Section, ch.StudyType)
		if ch.Year > 0 {
			cmd.Printf(" | %d", ch.Year)
		}
		cmd.Println()
		cmd.Printf("      %s\n\n", truncate(ch.Text, 240))
	}
	cmd.Println("References:")
	for _, ref := range set.References {
		cmd.Printf("  - %s\n", ref.Title)
		if ref.URL != "" {
			cmd.Printf("    %s\n", ref.URL)
		}
		if ref.PMCURL != "" {
			cmd.Printf("    %s\n", ref.PMCURL)
		}
	}
	return nil
}
