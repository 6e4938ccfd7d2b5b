package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

var (
	retrieveLimit int
	retrieveJSON  bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [term]",
	Short: "Retrieve assembled records (metadata + abstracts)",
	Long: `Searches PubMed and assembles full records for each hit: title,
journal, publication date, DOI, publication types and abstract text.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "n", 10, "maximum number of records")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	records, err := evidenceService.Retrieve(cmd.Context(), args[0], retrieveLimit)
	if err != nil {
		if errors.Is(err, domain.ErrNoAbstracts) {
			return errors.New("records found, but none carries an abstract usable for grounding")
		}
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return printJSON(cmd, map[string]any{"records": records})
	}

	if len(records) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range records {
		cmd.Printf("[%d] %s\n", i+1, r.Title)
		cmd.Printf("    PMID %s", r.PMID)
		if r.Journal != "" {
			cmd.Printf(" | %s", r.Journal)
		}
		if r.PubDate != "" {
			cmd.Printf(" | %s", r.PubDate)
		}
		cmd.Println()
		if r.DOI != "" {
			cmd.Printf("    DOI %s\n", r.DOI)
		}
		if r.Abstract != "" {
			cmd.Printf("    %s\n", truncate(r.Abstract, 240))
		}
		cmd.Println()
	}
	return nil
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
