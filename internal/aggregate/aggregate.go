// Package aggregate turns traversal events into delimited content blocks, one per
// eligible file, optionally headed by a generated description.
package aggregate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/overview/internal/describe"
	"github.com/temirov/overview/internal/tokenizer"
	"github.com/temirov/overview/internal/types"
	"github.com/temirov/overview/internal/utils"
	"github.com/temirov/overview/internal/walker"
)

const (
	// AllExtensions selects every regular file regardless of extension.
	AllExtensions = utils.AnyExtension
	// DescriptionUnavailable replaces the description when the API call fails.
	DescriptionUnavailable = "Description unavailable due to an API error."

	unreadablePlaceholderFormat = "[content unavailable: %v]"
	binaryPlaceholderFormat     = "[content omitted: binary or non-UTF-8 data (%s, %s)]"
)

// Options configures an Aggregator.
type Options struct {
	// Extensions lists the file extensions aggregated. Empty selects ".py".
	Extensions []string
	// Describer, when set, enables description mode.
	Describer describe.Describer
	// Hint is the optional partial prompt passed to the Describer.
	Hint    string
	Counter tokenizer.Counter
	Logger  *zap.Logger
}

// Aggregator collects content blocks in traversal order.
type Aggregator struct {
	extensions    []string
	allExtensions bool
	describer     describe.Describer
	hint          string
	counter       tokenizer.Counter
	logger        *zap.Logger

	records []types.FileRecord
	tally   tokenizer.Tally
	usage   describe.Usage
}

// New creates an Aggregator.
func New(options Options) *Aggregator {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	aggregator := &Aggregator{
		describer: options.Describer,
		hint:      options.Hint,
		counter:   options.Counter,
		logger:    logger,
	}
	if utils.ContainsString(utils.NormalizeExtensions(options.Extensions), AllExtensions) {
		aggregator.allExtensions = true
	} else {
		aggregator.extensions = utils.NormalizeExtensions(options.Extensions)
		if len(aggregator.extensions) == 0 {
			aggregator.extensions = []string{utils.PythonExtension}
		}
	}
	return aggregator
}

// Handle consumes one traversal event. Directory events are ignored. Read failures
// never stop aggregation; only context cancellation is returned.
func (aggregator *Aggregator) Handle(ctx context.Context, event walker.Event) error {
	switch event.Kind {
	case walker.EventFile:
	case walker.EventSymlink:
		if !aggregator.eligible(event.Entry.Name) {
			return nil
		}
		targetInfo, statError := os.Stat(event.Entry.AbsolutePath)
		if statError != nil || !targetInfo.Mode().IsRegular() {
			aggregator.logger.Debug("skipping symlink without regular target", zap.String("path", event.Entry.RelativePath))
			return nil
		}
	default:
		return nil
	}
	if !aggregator.eligible(event.Entry.Name) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	aggregator.records = append(aggregator.records, aggregator.buildRecord(ctx, event.Entry))
	return nil
}

func (aggregator *Aggregator) eligible(name string) bool {
	return aggregator.allExtensions || utils.HasExtension(name, aggregator.extensions)
}

func (aggregator *Aggregator) buildRecord(ctx context.Context, entry types.FileEntry) types.FileRecord {
	record := types.FileRecord{Name: entry.Name, Path: entry.RelativePath}
	aggregator.logger.Debug("processing file", zap.String("path", entry.RelativePath))

	data, readError := os.ReadFile(entry.AbsolutePath)
	if readError != nil {
		warning := &types.IOWarning{Path: entry.AbsolutePath, Operation: "reading file", Err: readError}
		aggregator.logger.Warn("file content unavailable",
			zap.String("path", warning.Path),
			zap.String("operation", warning.Operation),
			zap.Error(warning.Err),
		)
		record.ReadFailure = warning.Error()
		record.Content = fmt.Sprintf(unreadablePlaceholderFormat, readError)
		return record
	}
	if utils.IsBinary(data) {
		mimeType := utils.DetectMimeType(data)
		aggregator.logger.Warn("file content is not text",
			zap.String("path", entry.AbsolutePath),
			zap.String("mimeType", mimeType),
		)
		record.ReadFailure = "binary content"
		record.Content = fmt.Sprintf(binaryPlaceholderFormat, mimeType, utils.FormatFileSize(int64(len(data))))
		return record
	}
	record.Content = string(data)

	if aggregator.counter != nil {
		countResult, countError := tokenizer.CountBytes(aggregator.counter, data)
		if countError != nil {
			aggregator.logger.Warn("token count failed", zap.String("path", entry.RelativePath), zap.Error(countError))
		} else if countResult.Counted {
			record.Tokens = countResult.Tokens
			aggregator.tally.Add(countResult.Tokens)
		}
	}

	if aggregator.describer != nil {
		record.Description = aggregator.describeContent(ctx, entry, record.Content)
	}
	return record
}

func (aggregator *Aggregator) describeContent(ctx context.Context, entry types.FileEntry, content string) string {
	description, describeError := aggregator.describer.Describe(ctx, content, aggregator.hint)
	if describeError != nil {
		aggregator.logger.Warn("description failed", zap.String("path", entry.RelativePath), zap.Error(describeError))
		return DescriptionUnavailable
	}
	aggregator.usage.PromptTokens += description.Usage.PromptTokens
	aggregator.usage.CompletionTokens += description.Usage.CompletionTokens
	aggregator.usage.TotalTokens += description.Usage.TotalTokens
	aggregator.logger.Info("description tokens used",
		zap.String("file", entry.Name),
		zap.Int("prompt", description.Usage.PromptTokens),
		zap.Int("completion", description.Usage.CompletionTokens),
		zap.Int("total", description.Usage.TotalTokens),
	)
	return description.Text
}

// Records returns the aggregated files in traversal order.
func (aggregator *Aggregator) Records() []types.FileRecord {
	return append([]types.FileRecord(nil), aggregator.records...)
}

// Blocks returns the formatted content blocks in traversal order.
func (aggregator *Aggregator) Blocks() []string {
	blocks := make([]string, 0, len(aggregator.records))
	for _, record := range aggregator.records {
		blocks = append(blocks, FormatBlock(record, aggregator.describer != nil))
	}
	return blocks
}

// Tally returns the token totals of the aggregated content.
func (aggregator *Aggregator) Tally() tokenizer.Tally {
	return aggregator.tally
}

// Usage returns the API tokens spent on descriptions.
func (aggregator *Aggregator) Usage() describe.Usage {
	return aggregator.usage
}

// FormatBlock renders one content block:
//
//	'a.py'
//	**Description:** ...
//	``` File path = a.py
//
//	<content>
//	```
//
// The description line is present only in description mode and only for files whose
// content could be read.
func FormatBlock(record types.FileRecord, withDescription bool) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "'%s'\n", record.Name)
	if withDescription && record.ReadFailure == "" {
		fmt.Fprintf(&builder, "**Description:** %s\n", record.Description)
	}
	fmt.Fprintf(&builder, "``` File path = %s\n\n", record.Path)
	builder.WriteString(record.Content)
	builder.WriteString("\n```\n\n")
	return builder.String()
}
