package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/temirov/overview/internal/utils"
)

const (
	// StdoutTarget writes to standard output.
	StdoutTarget = "-"
	// AutoTarget selects a timestamped file in the working directory.
	AutoTarget = "auto"

	autoFileNameFormat = "%s_%s%s"
	textExtension      = ".txt"
	jsonExtension      = ".json"
)

// ResolveTextTarget maps an --output value to a file path. It returns "" for standard
// output.
func ResolveTextTarget(value string, now time.Time) string {
	return resolveTarget(value, now, textExtension)
}

// ResolveJSONTarget maps a --json value to a file path.
func ResolveJSONTarget(value string, now time.Time) string {
	return resolveTarget(value, now, jsonExtension)
}

func resolveTarget(value string, now time.Time, extension string) string {
	trimmed := strings.TrimSpace(value)
	switch trimmed {
	case "", StdoutTarget:
		return ""
	case AutoTarget:
		return fmt.Sprintf(autoFileNameFormat, utils.ApplicationName, utils.FormatFileStamp(now), extension)
	default:
		return trimmed
	}
}

// WriteToTarget writes writerTo to path, or to stdout when path is empty.
func WriteToTarget(path string, stdout io.Writer, writerTo io.WriterTo) error {
	if path == "" {
		_, writeError := writerTo.WriteTo(stdout)
		return writeError
	}
	file, createError := os.Create(path)
	if createError != nil {
		return fmt.Errorf("create output file %s: %w", path, createError)
	}
	if _, writeError := writerTo.WriteTo(file); writeError != nil {
		_ = file.Close()
		return fmt.Errorf("write output file %s: %w", path, writeError)
	}
	if closeError := file.Close(); closeError != nil {
		return fmt.Errorf("close output file %s: %w", path, closeError)
	}
	return nil
}
