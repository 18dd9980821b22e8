package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/overview/internal/config"
	"github.com/temirov/overview/internal/describe"
	"github.com/temirov/overview/internal/patterns"
	"github.com/temirov/overview/internal/tokenizer"
	"github.com/temirov/overview/internal/types"
	"github.com/temirov/overview/internal/utils"
)

const defaultRootDirectory = "."

// flagValues receives the raw command line before configuration defaults apply.
type flagValues struct {
	python           bool
	tree             bool
	description      bool
	apiKey           string
	prompt           string
	ignoreDirs       []string
	ignoreFiles      []string
	ignorePatterns   []string
	ignoreFile       string
	includeDirs      []string
	includeFiles     []string
	includePatterns  []string
	noDefaultIgnores bool
	onlyIncluded     bool
	extensions       []string
	outputPath       string
	jsonPath         string
	copy             bool
	tokens           bool
	tokenModel       string
	descriptionModel string
	baseURL          string
	retries          int
	configPath       string
	initTarget       string
	force            bool
	verbose          bool
	showVersion      bool
}

func registerFlags(command *cobra.Command, flags *flagValues) {
	flagSet := command.Flags()
	registerBooleanFlag(flagSet, &flags.python, pythonFlagName, pythonFlagShorthand, pythonFlagDescription)
	registerBooleanFlag(flagSet, &flags.tree, treeFlagName, treeFlagShorthand, treeFlagDescription)
	registerBooleanFlag(flagSet, &flags.description, descriptionFlagName, "", descriptionFlagDescription)
	flagSet.StringVar(&flags.apiKey, apiFlagName, "", apiFlagDescription)
	flagSet.StringVarP(&flags.prompt, promptFlagName, promptFlagShorthand, "", promptFlagDescription)

	flagSet.StringArrayVar(&flags.ignoreDirs, ignoreDirsFlagName, nil, ignoreDirsFlagDescription)
	flagSet.StringArrayVar(&flags.ignoreFiles, ignoreFilesFlagName, nil, ignoreFilesFlagDescription)
	flagSet.StringArrayVar(&flags.ignorePatterns, ignorePatternsFlagName, nil, ignorePatternsFlagDescription)
	flagSet.StringVar(&flags.ignoreFile, ignoreFileFlagName, "", ignoreFileFlagDescription)
	flagSet.StringArrayVar(&flags.includeDirs, includeDirsFlagName, nil, includeDirsFlagDescription)
	flagSet.StringArrayVar(&flags.includeFiles, includeFilesFlagName, nil, includeFilesFlagDescription)
	flagSet.StringArrayVar(&flags.includePatterns, includePatternsFlagName, nil, includePatternsFlagDescription)
	registerBooleanFlag(flagSet, &flags.noDefaultIgnores, noDefaultIgnoresName, "", noDefaultIgnoresFlagDescription)
	registerBooleanFlag(flagSet, &flags.onlyIncluded, onlyIncludedFlagName, "", onlyIncludedFlagDescription)
	flagSet.StringArrayVar(&flags.extensions, extensionsFlagName, nil, extensionsFlagDescription)

	flagSet.StringVarP(&flags.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.StringVar(&flags.jsonPath, jsonFlagName, "", jsonFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, "", copyFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, "", tokensFlagDescription)
	flagSet.StringVar(&flags.tokenModel, tokenModelFlagName, tokenizer.DefaultModel, tokenModelFlagDescription)

	flagSet.StringVar(&flags.descriptionModel, descriptionModelName, describe.DefaultModel, descriptionModelFlagDescription)
	flagSet.StringVar(&flags.baseURL, baseURLFlagName, describe.DefaultBaseURL, baseURLFlagDescription)
	flagSet.IntVar(&flags.retries, retriesFlagName, describe.DefaultRetryConfig().MaxRetries, retriesFlagDescription)

	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringVar(&flags.initTarget, initConfigFlagName, "", initConfigFlagDescription)
	registerBooleanFlag(flagSet, &flags.force, forceFlagName, "", forceFlagDescription)
	registerBooleanFlag(flagSet, &flags.verbose, verboseFlagName, verboseFlagShorthand, verboseFlagDescription)
	registerBooleanFlag(flagSet, &flags.showVersion, versionFlagName, "", versionFlagDescription)
}

// applyConfiguration fills every flag not given on the command line from the
// configuration files.
func (flags *flagValues) applyConfiguration(command *cobra.Command, fileConfiguration config.ApplicationConfiguration) {
	changed := func(name string) bool {
		return command.Flags().Changed(name)
	}
	applyBool := func(name string, target *bool, value *bool) {
		if !changed(name) && value != nil {
			*target = *value
		}
	}
	applyString := func(name string, target *string, value string) {
		if !changed(name) && value != "" {
			*target = value
		}
	}
	applyList := func(name string, target *[]string, value []string) {
		if !changed(name) && len(value) > 0 {
			*target = append([]string(nil), value...)
		}
	}

	applyBool(pythonFlagName, &flags.python, fileConfiguration.Content.Enabled)
	applyList(extensionsFlagName, &flags.extensions, fileConfiguration.Content.Extensions)
	applyBool(tokensFlagName, &flags.tokens, fileConfiguration.Content.Tokens.Enabled)
	applyString(tokenModelFlagName, &flags.tokenModel, fileConfiguration.Content.Tokens.Model)
	applyBool(treeFlagName, &flags.tree, fileConfiguration.Tree.Enabled)

	patternConfiguration := fileConfiguration.Patterns
	applyList(ignoreDirsFlagName, &flags.ignoreDirs, patternConfiguration.IgnoreDirs)
	applyList(ignoreFilesFlagName, &flags.ignoreFiles, patternConfiguration.IgnoreFiles)
	applyList(ignorePatternsFlagName, &flags.ignorePatterns, patternConfiguration.IgnorePatterns)
	applyString(ignoreFileFlagName, &flags.ignoreFile, patternConfiguration.IgnoreFile)
	applyList(includeDirsFlagName, &flags.includeDirs, patternConfiguration.IncludeDirs)
	applyList(includeFilesFlagName, &flags.includeFiles, patternConfiguration.IncludeFiles)
	applyList(includePatternsFlagName, &flags.includePatterns, patternConfiguration.IncludePatterns)
	if !changed(noDefaultIgnoresName) && patternConfiguration.DefaultIgnores != nil {
		flags.noDefaultIgnores = !*patternConfiguration.DefaultIgnores
	}
	applyBool(onlyIncludedFlagName, &flags.onlyIncluded, patternConfiguration.OnlyIncluded)

	descriptionConfiguration := fileConfiguration.Description
	applyBool(descriptionFlagName, &flags.description, descriptionConfiguration.Enabled)
	applyString(descriptionModelName, &flags.descriptionModel, descriptionConfiguration.Model)
	applyString(baseURLFlagName, &flags.baseURL, descriptionConfiguration.BaseURL)
	applyString(promptFlagName, &flags.prompt, descriptionConfiguration.Prompt)
	if !changed(retriesFlagName) && descriptionConfiguration.Retries != nil {
		flags.retries = *descriptionConfiguration.Retries
	}

	applyString(outputFlagName, &flags.outputPath, fileConfiguration.Output.Path)
	applyString(jsonFlagName, &flags.jsonPath, fileConfiguration.Output.JSON)
	applyBool(copyFlagName, &flags.copy, fileConfiguration.Output.Clipboard)
}

// Options is the validated configuration of one run. It is fixed before traversal
// begins.
type Options struct {
	Root             string
	RootPath         string
	Python           bool
	Tree             bool
	Describe         bool
	APIKey           string
	Prompt           string
	DescriptionModel string
	BaseURL          string
	Retries          int
	Patterns         patterns.Sources
	Extensions       []string
	Tokens           bool
	TokenModel       string
	OutputPath       string
	JSONPath         string
	Copy             bool
	Verbose          bool
}

// buildOptions converts parsed flags into Options and validates them.
func buildOptions(arguments []string, workingDirectory string, flags flagValues, fileConfiguration config.ApplicationConfiguration) (Options, error) {
	root := defaultRootDirectory
	if len(arguments) > 0 && strings.TrimSpace(arguments[0]) != "" {
		root = arguments[0]
	}
	options := Options{
		Root:             root,
		RootPath:         resolveAgainst(workingDirectory, root),
		Python:           flags.python,
		Tree:             flags.tree,
		Describe:         flags.description,
		Prompt:           flags.prompt,
		DescriptionModel: flags.descriptionModel,
		BaseURL:          flags.baseURL,
		Retries:          flags.retries,
		Patterns: patterns.Sources{
			IgnoreDirs:      flags.ignoreDirs,
			IgnoreFiles:     flags.ignoreFiles,
			IgnorePatterns:  flags.ignorePatterns,
			IncludeDirs:     flags.includeDirs,
			IncludeFiles:    flags.includeFiles,
			IncludePatterns: flags.includePatterns,
			IgnoreFilePath:  resolveAgainst(workingDirectory, flags.ignoreFile),
			DisableDefaults: flags.noDefaultIgnores,
			OnlyIncluded:    flags.onlyIncluded,
		},
		Extensions: flags.extensions,
		Tokens:     flags.tokens,
		TokenModel: flags.tokenModel,
		OutputPath: flags.outputPath,
		JSONPath:   flags.jsonPath,
		Copy:       flags.copy,
		Verbose:    flags.verbose,
	}
	if options.describesFiles() {
		options.APIKey = config.ResolveAPIKey(flags.apiKey, fileConfiguration.Description.APIKey)
	}
	return options, options.Validate()
}

// Validate reports the first configuration problem as a *types.ConfigError.
func (options Options) Validate() error {
	rootInfo, statErr := os.Stat(options.RootPath)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		return types.NewConfigError("root_dir", fmt.Sprintf("directory %s does not exist", options.Root))
	case statErr != nil:
		return &types.ConfigError{Field: "root_dir", Reason: fmt.Sprintf("cannot access %s", options.Root), Err: statErr}
	case !rootInfo.IsDir():
		return types.NewConfigError("root_dir", fmt.Sprintf("%s is not a directory", options.Root))
	}
	if !options.Python && !options.Tree {
		return types.NewConfigError("mode", "select at least one of -p/--python or -t/--tree")
	}
	if options.describesFiles() && options.APIKey == "" {
		return types.NewConfigError(apiFlagName, "an API key is required when using -description; pass -api or set one of "+
			strings.Join(config.APIKeyEnvironmentVariables, ", "))
	}
	if options.Retries < 0 {
		return types.NewConfigError(retriesFlagName, fmt.Sprintf("must not be negative, got %d", options.Retries))
	}
	return nil
}

// describesFiles reports whether descriptions are requested for aggregated content.
// Descriptions annotate content blocks, so -description alone has no effect on a
// tree-only run.
func (options Options) describesFiles() bool {
	return options.Describe && options.Python
}

func resolveAgainst(workingDirectory string, path string) string {
	if path == "" || filepath.IsAbs(path) || workingDirectory == "" {
		return path
	}
	return filepath.Join(workingDirectory, path)
}

func (options Options) extensionsOrDefault() []string {
	if len(options.Extensions) == 0 {
		return []string{utils.PythonExtension}
	}
	return options.Extensions
}
