// Package cli provides the cobra command-line interface for clearcite.
package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	configfile "github.com/clearcite/clearcite-cli/internal/adapters/driven/config/file"
	embeddingopenai "github.com/clearcite/clearcite-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/clearcite/clearcite-cli/internal/adapters/driven/llm/openai"
	"github.com/clearcite/clearcite-cli/internal/cache"
	"github.com/clearcite/clearcite-cli/internal/connectors/entrez"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driven"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driving"
	"github.com/clearcite/clearcite-cli/internal/core/services"
	"github.com/clearcite/clearcite-cli/internal/logger"
	"github.com/clearcite/clearcite-cli/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Wired services, shared by the subcommands. Tests may swap these out.
var (
	evidenceService driving.EvidenceService
	answerService   driving.AnswerService
	configStore     *configfile.ConfigStore
	registry        *metrics.Registry
)

var rootCmd = &cobra.Command{
	Use:   "clearcite",
	Short: "Grounded biomedical literature retrieval and answering",
	Long: `clearcite retrieves PubMed/PMC literature via the NCBI E-utilities,
ranks evidence chunks with hybrid lexical+semantic scoring, and can
synthesize citation-checked answers grounded only in the retrieved text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logMetrics()
	},
}

// logMetrics dumps the per-run counters and latency percentiles to the
// verbose log after a command finishes.
func logMetrics() {
	if registry == nil || !logger.IsVerbose() {
		return
	}
	snap := registry.Snapshot()
	keys := make([]string, 0, len(snap.Counters))
	for k := range snap.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger.Debug("metric %s=%d", k, snap.Counters[k])
	}
	keys = keys[:0]
	for k := range snap.LatencyP95MS {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger.Debug("metric %s p95=%.1fms", k, snap.LatencyP95MS[k])
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// initServices wires the adapters into the core services. Idempotent so
// tests can pre-populate the service variables.
func initServices() error {
	if evidenceService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store
	settings := configfile.LoadSettings(store)

	registry = metrics.New()
	client := entrez.New(
		entrez.Config{
			APIKey: settings.NCBIAPIKey,
			Email:  settings.NCBIEmail,
			Tool:   settings.NCBITool,
		},
		entrez.WithCaches(
			cache.New[entrez.Key, any](entrez.ShortCacheItems, entrez.ShortCacheTTL),
			cache.New[entrez.Key, any](entrez.StdCacheItems, entrez.StdCacheTTL),
		),
		entrez.WithMetrics(registry),
	)

	var similarity driven.SimilarityService
	var synthesis driven.SynthesisService
	if settings.OpenAIAPIKey != "" {
		sim, err := embeddingopenai.NewSimilarityService(embeddingopenai.Config{
			APIKey: settings.OpenAIAPIKey,
		})
		if err != nil {
			return fmt.Errorf("configuring similarity service: %w", err)
		}
		similarity = sim

		synth, err := llmopenai.NewSynthesisService(llmopenai.Config{
			APIKey: settings.OpenAIAPIKey,
			Model:  settings.OpenAIModel,
		})
		if err != nil {
			return fmt.Errorf("configuring synthesis service: %w", err)
		}
		synthesis = synth
	} else {
		logger.Debug("no OpenAI key configured: semantic scoring and synthesis disabled")
	}

	evidence := services.NewEvidenceService(client, similarity)
	evidenceService = evidence
	if synthesis != nil {
		answerService = services.NewAnswerService(evidence, synthesis)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
