package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/overview/internal/aggregate"
	"github.com/temirov/overview/internal/describe"
	"github.com/temirov/overview/internal/output"
	"github.com/temirov/overview/internal/patterns"
	"github.com/temirov/overview/internal/render"
	"github.com/temirov/overview/internal/tokenizer"
	"github.com/temirov/overview/internal/walker"
)

// run executes one overview pass: resolve patterns, walk once feeding the renderer
// and the aggregator, then write the document and its side outputs.
func (application *Application) run(ctx context.Context, options Options, logger *zap.Logger) error {
	resolver, err := patterns.Resolve(options.Patterns, logger)
	if err != nil {
		return err
	}

	var describer describe.Describer
	if options.Describe && !options.Python {
		logger.Warn("description generation ignored without content aggregation", zap.String("flag", "-"+descriptionFlagName))
	}
	if options.describesFiles() {
		retry := describe.DefaultRetryConfig()
		retry.MaxRetries = options.Retries
		describer, err = application.NewDescriber(describe.Config{
			APIKey:  options.APIKey,
			BaseURL: options.BaseURL,
			Model:   options.DescriptionModel,
			Retry:   &retry,
		})
		if err != nil {
			return fmt.Errorf("create description client: %w", err)
		}
		logger.Info("description generation enabled", zap.String("model", options.DescriptionModel))
	}

	var counter tokenizer.Counter
	tokenModel := ""
	if options.Tokens {
		counter, tokenModel, err = tokenizer.NewCounter(tokenizer.Config{Model: options.TokenModel})
		if err != nil {
			logger.Warn("token counting disabled", zap.Error(err))
			counter = nil
		}
	}

	aggregator := aggregate.New(aggregate.Options{
		Extensions: options.extensionsOrDefault(),
		Describer:  describer,
		Hint:       options.Prompt,
		Counter:    counter,
		Logger:     logger,
	})
	renderer := render.NewRenderer(options.Root)

	logger.Info("scanning", zap.String("root", options.Root))
	walkErr := walker.Walk(ctx, walker.Options{
		Root:     options.RootPath,
		Resolver: resolver,
		Logger:   logger,
	}, func(event walker.Event) error {
		if options.Tree {
			if handleErr := renderer.Handle(event); handleErr != nil {
				return handleErr
			}
		}
		if options.Python {
			return aggregator.Handle(ctx, event)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", options.Root, walkErr)
	}

	var document output.Document
	if options.Tree {
		document.AddSection(renderer.String())
	}
	if options.Python {
		document.AddSections(aggregator.Blocks()...)
	}

	now := application.Now()
	textTarget := resolveAgainst(application.WorkingDirectory, output.ResolveTextTarget(options.OutputPath, now))
	if err := output.WriteToTarget(textTarget, application.Stdout, &document); err != nil {
		return err
	}
	if textTarget != "" {
		logger.Info("overview written", zap.String("path", textTarget))
	}

	if options.JSONPath != "" {
		jsonTarget := resolveAgainst(application.WorkingDirectory, output.ResolveJSONTarget(options.JSONPath, now))
		sideDocument := output.SideDocument{
			Root:     options.Root,
			Patterns: resolver.PatternSet(),
			Files:    aggregator.Records(),
		}
		if options.Tree {
			sideDocument.Tree = renderer.Root()
		}
		if err := output.WriteToTarget(jsonTarget, application.Stdout, sideDocument); err != nil {
			return err
		}
		if jsonTarget != "" {
			logger.Info("JSON document written", zap.String("path", jsonTarget))
		}
	}

	if options.Copy && application.Copier != nil {
		if err := application.Copier.Copy(document.String()); err != nil {
			logger.Warn("clipboard copy failed", zap.Error(err))
		} else {
			logger.Info("overview copied to clipboard")
		}
	}

	if counter != nil {
		tally := aggregator.Tally()
		logger.Info("token totals",
			zap.String("model", tokenModel),
			zap.Int("files", tally.Files),
			zap.Int("tokens", tally.Tokens),
		)
	}
	if describer != nil {
		usage := aggregator.Usage()
		logger.Info("description token totals",
			zap.Int("prompt", usage.PromptTokens),
			zap.Int("completion", usage.CompletionTokens),
			zap.Int("total", usage.TotalTokens),
		)
	}
	return nil
}
