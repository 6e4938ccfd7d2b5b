package file

import "os"

// Config keys.
const (
	KeyNCBIAPIKey   = "ncbi.api_key"
	KeyNCBIEmail    = "ncbi.email"
	KeyNCBITool     = "ncbi.tool"
	KeyOpenAIAPIKey = "openai.api_key"
	KeyOpenAIModel  = "openai.model"
)

// Settings are the resolved credentials and identities the pipeline needs.
// Empty fields mean "not configured"; the services that need them decide
// whether that is fatal or a degradation.
type Settings struct {
	NCBIAPIKey   string
	NCBIEmail    string
	NCBITool     string
	OpenAIAPIKey string
	OpenAIModel  string
}

// LoadSettings resolves settings from the store with environment variable
// overrides: NCBI_API_KEY, NCBI_EMAIL, NCBI_TOOL, OPENAI_API_KEY and
// OPENAI_MODEL each take precedence over the config file when set.
func LoadSettings(store *ConfigStore) Settings {
	s := Settings{
		NCBIAPIKey:   store.GetString(KeyNCBIAPIKey),
		NCBIEmail:    store.GetString(KeyNCBIEmail),
		NCBITool:     store.GetString(KeyNCBITool),
		OpenAIAPIKey: store.GetString(KeyOpenAIAPIKey),
		OpenAIModel:  store.GetString(KeyOpenAIModel),
	}
	overrideFromEnv(&s.NCBIAPIKey, "NCBI_API_KEY")
	overrideFromEnv(&s.NCBIEmail, "NCBI_EMAIL")
	overrideFromEnv(&s.NCBITool, "NCBI_TOOL")
	overrideFromEnv(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	overrideFromEnv(&s.OpenAIModel, "OPENAI_MODEL")
	return s
}

func overrideFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
