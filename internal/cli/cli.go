// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/overview/internal/config"
	"github.com/temirov/overview/internal/describe"
	"github.com/temirov/overview/internal/services/clipboard"
	"github.com/temirov/overview/internal/utils"
)

const (
	pythonFlagName          = "python"
	pythonFlagShorthand     = "p"
	treeFlagName            = "tree"
	treeFlagShorthand       = "t"
	descriptionFlagName     = "description"
	apiFlagName             = "api"
	promptFlagName          = "prompt"
	promptFlagShorthand     = "d"
	ignoreDirsFlagName      = "ignore-dirs"
	ignoreFilesFlagName     = "ignore-files"
	ignorePatternsFlagName  = "ignore-patterns"
	ignoreFileFlagName      = "ignore-file"
	includeDirsFlagName     = "include-dirs"
	includeFilesFlagName    = "include-files"
	includePatternsFlagName = "include-patterns"
	noDefaultIgnoresName    = "no-default-ignores"
	onlyIncludedFlagName    = "only-included"
	extensionsFlagName      = "extensions"
	outputFlagName          = "output"
	outputFlagShorthand     = "o"
	jsonFlagName            = "json"
	copyFlagName            = "copy"
	tokensFlagName          = "tokens"
	tokenModelFlagName      = "token-model"
	descriptionModelName    = "description-model"
	baseURLFlagName         = "base-url"
	retriesFlagName         = "retries"
	configFlagName          = "config"
	initConfigFlagName      = "init-config"
	forceFlagName           = "force"
	verboseFlagName         = "verbose"
	verboseFlagShorthand    = "v"
	versionFlagName         = "version"

	rootUse              = utils.ApplicationName + " [root_dir]"
	rootShortDescription = "Create an overview of source files and/or a directory tree"
	rootLongDescription  = `overview walks a directory and writes a single text document containing
an annotated directory tree (-t) and/or the concatenated content of source files (-p).
Files can be annotated with short descriptions generated by the OpenAI chat completions
API (-description). Defaults are read from ~/.overview/config.yaml and ./.overview.yaml.`
	rootUsageExample = `  # Tree and Python sources of the current directory, ignoring tmp
  overview -p -t --ignore-dirs tmp

  # Keep tmp ignored but still include one file from it
  overview -p --ignore-dirs tmp --include-files c.py ./project

  # Describe every file, guided by a partial prompt
  overview -p -description -d "Focus on side effects" -o auto ./project`

	pythonFlagDescription           = "aggregate the content of source files (.py unless --extensions is set)"
	treeFlagDescription             = "render the annotated directory tree"
	descriptionFlagDescription      = "generate file descriptions with the OpenAI API"
	apiFlagDescription              = "OpenAI API key (defaults to OPENAI_API_KEY, API_KEY or api_key)"
	promptFlagDescription           = "partial prompt guiding description generation"
	ignoreDirsFlagDescription       = "directory patterns to ignore"
	ignoreFilesFlagDescription      = "file patterns to ignore"
	ignorePatternsFlagDescription   = "patterns to ignore for any entry"
	ignoreFileFlagDescription       = "file with one ignore pattern per line"
	includeDirsFlagDescription      = "directory patterns to include even when ignored"
	includeFilesFlagDescription     = "file patterns to include even when ignored"
	includePatternsFlagDescription  = "patterns to include even when ignored"
	noDefaultIgnoresFlagDescription = "do not ignore dot files, __*__, venv, env and __pycache__"
	onlyIncludedFlagDescription     = "with include rules, skip files that match none of them"
	extensionsFlagDescription       = "file extensions aggregated by -p (\"*\" for every file)"
	outputFlagDescription           = "output file, \"-\" for stdout, \"auto\" for a timestamped file"
	jsonFlagDescription             = "also write a JSON document to this path (\"auto\" for a timestamped file)"
	copyFlagDescription             = "copy the overview to the system clipboard"
	tokensFlagDescription           = "count tokens of aggregated content"
	tokenModelFlagDescription       = "tokenizer model used by --tokens"
	descriptionModelFlagDescription = "chat model used for descriptions"
	baseURLFlagDescription          = "chat completions API base URL"
	retriesFlagDescription          = "retries of rate-limited or failed description requests"
	configFlagDescription           = "configuration file used instead of ./.overview.yaml"
	initConfigFlagDescription       = "write a starter configuration (local or global) and exit"
	forceFlagDescription            = "overwrite an existing configuration with --init-config"
	verboseFlagDescription          = "log debug details"
	versionFlagDescription          = "display application version"

	versionTemplate           = "overview version: %s\n"
	initConfigTemplate        = "configuration written to %s\n"
	workingDirectoryErrFormat = "determine working directory: %w"
	loadConfigurationErrLabel = "load configuration"
)

// Application wires the command line to the overview pipeline. Its collaborators are
// replaceable for tests.
type Application struct {
	Stdout           io.Writer
	Stderr           io.Writer
	WorkingDirectory string
	HomeDirectory    string
	NewLogger        func(verbose bool) (*zap.Logger, error)
	NewDescriber     func(describe.Config) (describe.Describer, error)
	Copier           clipboard.Copier
	Now              func() time.Time
}

// NewApplication returns an Application bound to the process environment.
func NewApplication() *Application {
	return &Application{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		NewLogger:    utils.NewApplicationLogger,
		NewDescriber: newDescriptionClient,
		Copier:       clipboard.NewService(),
		Now:          time.Now,
	}
}

func newDescriptionClient(cfg describe.Config) (describe.Describer, error) {
	return describe.NewClient(cfg)
}

// Execute runs the overview application with the process arguments.
func Execute(ctx context.Context, arguments []string) error {
	return NewApplication().Execute(ctx, arguments)
}

// Execute parses arguments and runs the overview pipeline.
func (application *Application) Execute(ctx context.Context, arguments []string) error {
	rootCommand := application.createRootCommand()
	normalized := normalizeBooleanFlagArguments(rootCommand, normalizeLegacyArguments(arguments))
	rootCommand.SetArgs(normalized)
	rootCommand.SetOut(application.Stdout)
	rootCommand.SetErr(application.Stderr)
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func (application *Application) createRootCommand() *cobra.Command {
	var flags flagValues

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			if flags.initTarget != "" {
				return application.initializeConfiguration(command, flags)
			}
			return application.runCommand(command, arguments, &flags)
		},
	}
	registerFlags(rootCommand, &flags)
	return rootCommand
}

func (application *Application) initializeConfiguration(command *cobra.Command, flags flagValues) error {
	path, err := config.InitializeConfiguration(config.InitOptions{
		Target:           config.InitTarget(flags.initTarget),
		Force:            flags.force,
		WorkingDirectory: application.WorkingDirectory,
		HomeDirectory:    application.HomeDirectory,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(command.OutOrStdout(), initConfigTemplate, path)
	return err
}

func (application *Application) runCommand(command *cobra.Command, arguments []string, flags *flagValues) error {
	workingDirectory := application.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return fmt.Errorf(workingDirectoryErrFormat, err)
		}
		workingDirectory = currentDirectory
	}

	fileConfiguration, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
		HomeDirectory:    application.HomeDirectory,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", loadConfigurationErrLabel, err)
	}
	flags.applyConfiguration(command, fileConfiguration)

	options, err := buildOptions(arguments, workingDirectory, *flags, fileConfiguration)
	if err != nil {
		return err
	}

	logger, err := application.NewLogger(options.Verbose)
	if err != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
	}
	defer func() { _ = logger.Sync() }()

	return application.run(command.Context(), options, logger)
}
