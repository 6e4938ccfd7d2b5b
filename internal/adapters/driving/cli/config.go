package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/clearcite/clearcite-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and set configuration values stored in ~/.clearcite/config.toml.

Recognised keys:
  ncbi.api_key     NCBI API key (raises the rate limit to 10 req/s)
  ncbi.email       contact email attached to NCBI requests
  ncbi.tool        tool name attached to NCBI requests
  openai.api_key   OpenAI API key for semantic scoring and synthesis
  openai.model     OpenAI chat model for synthesis

Environment variables (NCBI_API_KEY, NCBI_EMAIL, NCBI_TOOL,
OPENAI_API_KEY, OPENAI_MODEL) override the file values.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configStore.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		cmd.Printf("Set %s\n", args[0])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println(configStore.GetString(args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Println(configStore.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved settings",
	Long:  `Shows the effective settings after environment overrides. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := configfile.LoadSettings(configStore)
		cmd.Printf("ncbi.email      %s\n", s.NCBIEmail)
		cmd.Printf("ncbi.tool       %s\n", s.NCBITool)
		cmd.Printf("ncbi.api_key    %s\n", mask(s.NCBIAPIKey))
		cmd.Printf("openai.model    %s\n", s.OpenAIModel)
		cmd.Printf("openai.api_key  %s\n", mask(s.OpenAIAPIKey))
		return nil
	},
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func init() {
	configCmd.AddCommand(configSetCmd, configGetCmd, configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
