package config

import (
	"strings"

	"github.com/spf13/viper"
)

const apiKeyConfigKey = "description.api_key"

// APIKeyEnvironmentVariables lists the variables consulted for the API key, in order.
var APIKeyEnvironmentVariables = []string{"OPENAI_API_KEY", "API_KEY", "api_key"}

// ResolveAPIKey returns explicit when set, otherwise the first non-empty API key
// environment variable, otherwise configured.
func ResolveAPIKey(explicit string, configured string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	reader := viper.New()
	reader.SetDefault(apiKeyConfigKey, configured)
	_ = reader.BindEnv(append([]string{apiKeyConfigKey}, APIKeyEnvironmentVariables...)...)
	return strings.TrimSpace(reader.GetString(apiKeyConfigKey))
}
