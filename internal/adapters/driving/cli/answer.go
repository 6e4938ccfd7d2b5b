package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	answerFlags rankingFlags
	answerTerm  string
	answerJSON  bool
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a question grounded in retrieved evidence",
	Long: `Retrieves and ranks PubMed/PMC evidence for --term, then asks the
synthesis model to answer the question using only that evidence. Every
citation is verified to quote the supplied snippets verbatim; questions
that cannot be grounded return "insufficient_evidence" instead of a guess.

Requires an OpenAI API key (config key openai.api_key or OPENAI_API_KEY).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	answerFlags.register(answerCmd)
	answerCmd.Flags().StringVarP(&answerTerm, "term", "t", "", "PubMed query used to retrieve the evidence (required)")
	answerCmd.Flags().BoolVar(&answerJSON, "json", false, "output as JSON")
	answerCmd.MarkFlagRequired("term") //nolint:errcheck
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answering requires an OpenAI API key; set openai.api_key or OPENAI_API_KEY")
	}

	answer, err := answerService.Answer(cmd.Context(), args[0], answerTerm, answerFlags.toOptions())
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if answerJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if len(answer.Citations) > 0 {
		cmd.Println("\nCitations:")
		for _, c := range answer.Citations {
			id := "PMID:" + c.PMID
			if c.PMCID != "" {
				id = "PMCID:PMC" + c.PMCID
			}
			cmd.Printf("  [%s] %q\n", id, c.Quote)
		}
	}
	if answer.Notes != "" {
		cmd.Printf("\nNotes: %s\n", answer.Notes)
	}
	if len(answer.References) > 0 {
		cmd.Println("\nReferences:")
		for _, ref := range answer.References {
			cmd.Printf("  - %s\n", ref.Title)
			if ref.URL != "" {
				cmd.Printf("    %s\n", ref.URL)
			}
			if ref.PMCURL != "" {
				cmd.Printf("    %s\n", ref.PMCURL)
			}
		}
	}
	return nil
}
