package patterns

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const commentPrefix = "#"

// LoadIgnoreFile reads an ignore file and returns its glob patterns, one per non-blank,
// non-comment line, in file order.
//
// #nosec G304
func LoadIgnoreFile(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("scanning %s: %w", ignoreFilePath, scanError)
	}
	return ignorePatterns, nil
}

// loadIgnoreFileOrWarn returns the patterns of ignoreFilePath, logging a warning and
// returning nil when the file cannot be read.
func loadIgnoreFileOrWarn(ignoreFilePath string, logger *zap.Logger) []string {
	if ignoreFilePath == "" {
		return nil
	}
	loadedPatterns, loadError := LoadIgnoreFile(ignoreFilePath)
	if loadError != nil {
		logger.Warn("ignore file unavailable, continuing without it",
			zap.String("path", ignoreFilePath),
			zap.Error(loadError),
		)
		return nil
	}
	logger.Debug("loaded ignore file", zap.String("path", ignoreFilePath), zap.Int("patterns", len(loadedPatterns)))
	return loadedPatterns
}
