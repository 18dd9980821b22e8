// Package config loads overview defaults from the global and project configuration
// files and resolves the description API key from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/overview/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	HomeDirectory    string
}

// ApplicationConfiguration holds defaults for every command-line option that can be
// preset in a configuration file.
type ApplicationConfiguration struct {
	Content     ContentConfiguration     `mapstructure:"content"`
	Tree        TreeConfiguration        `mapstructure:"tree"`
	Patterns    PatternConfiguration     `mapstructure:"patterns"`
	Description DescriptionConfiguration `mapstructure:"description"`
	Output      OutputConfiguration      `mapstructure:"output"`
}

// ContentConfiguration controls file content aggregation.
type ContentConfiguration struct {
	Enabled    *bool              `mapstructure:"enabled"`
	Extensions []string           `mapstructure:"extensions"`
	Tokens     TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// TreeConfiguration controls the directory tree section.
type TreeConfiguration struct {
	Enabled *bool `mapstructure:"enabled"`
}

// PatternConfiguration configures inclusion and exclusion rules for path traversal.
type PatternConfiguration struct {
	IgnoreDirs      []string `mapstructure:"ignore_dirs"`
	IgnoreFiles     []string `mapstructure:"ignore_files"`
	IgnorePatterns  []string `mapstructure:"ignore_patterns"`
	IncludeDirs     []string `mapstructure:"include_dirs"`
	IncludeFiles    []string `mapstructure:"include_files"`
	IncludePatterns []string `mapstructure:"include_patterns"`
	IgnoreFile      string   `mapstructure:"ignore_file"`
	DefaultIgnores  *bool    `mapstructure:"default_ignores"`
	OnlyIncluded    *bool    `mapstructure:"only_included"`
}

// DescriptionConfiguration controls generated file descriptions.
type DescriptionConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Prompt  string `mapstructure:"prompt"`
	Retries *int   `mapstructure:"retries"`
}

// OutputConfiguration selects output destinations.
type OutputConfiguration struct {
	Path      string `mapstructure:"path"`
	JSON      string `mapstructure:"json"`
	Clipboard *bool  `mapstructure:"clipboard"`
}

// GlobalConfigurationPath returns the location of the per-user configuration file.
func GlobalConfigurationPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

// LoadApplicationConfiguration loads configuration from the global file and then
// from the project file, or the explicit file when one is given. Later files win
// field by field. Missing files are skipped.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalConfig, loadErr := loadConfigurationFromPath(GlobalConfigurationPath(homeDirectory), false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName)
}

// loadConfigurationFromPath decodes one YAML file. A missing file yields an empty
// configuration unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Content = result.Content.merge(override.Content)
	if override.Tree.Enabled != nil {
		result.Tree.Enabled = cloneBool(override.Tree.Enabled)
	}
	result.Patterns = result.Patterns.merge(override.Patterns)
	result.Description = result.Description.merge(override.Description)
	result.Output = result.Output.merge(override.Output)
	return result
}

func (config ContentConfiguration) merge(override ContentConfiguration) ContentConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = utils.NormalizeExtensions(override.Extensions)
	}
	if override.Tokens.Enabled != nil {
		result.Tokens.Enabled = cloneBool(override.Tokens.Enabled)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	return result
}

// merge replaces pattern lists wholesale; lists are not concatenated across files.
func (config PatternConfiguration) merge(override PatternConfiguration) PatternConfiguration {
	result := config
	replaceList(&result.IgnoreDirs, override.IgnoreDirs)
	replaceList(&result.IgnoreFiles, override.IgnoreFiles)
	replaceList(&result.IgnorePatterns, override.IgnorePatterns)
	replaceList(&result.IncludeDirs, override.IncludeDirs)
	replaceList(&result.IncludeFiles, override.IncludeFiles)
	replaceList(&result.IncludePatterns, override.IncludePatterns)
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if override.DefaultIgnores != nil {
		result.DefaultIgnores = cloneBool(override.DefaultIgnores)
	}
	if override.OnlyIncluded != nil {
		result.OnlyIncluded = cloneBool(override.OnlyIncluded)
	}
	return result
}

func (config DescriptionConfiguration) merge(override DescriptionConfiguration) DescriptionConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.APIKey != "" {
		result.APIKey = override.APIKey
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.Prompt != "" {
		result.Prompt = override.Prompt
	}
	if override.Retries != nil {
		result.Retries = cloneInt(override.Retries)
	}
	return result
}

func (config OutputConfiguration) merge(override OutputConfiguration) OutputConfiguration {
	result := config
	if override.Path != "" {
		result.Path = override.Path
	}
	if override.JSON != "" {
		result.JSON = override.JSON
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func replaceList(target *[]string, override []string) {
	if len(override) > 0 {
		*target = utils.DeduplicatePatterns(override)
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
