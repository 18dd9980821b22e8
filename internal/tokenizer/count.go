package tokenizer

import (
	"errors"

	"github.com/temirov/overview/internal/utils"
)

// ErrNilCounter is returned when counting without a Counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data using counter. Binary data is not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// Tally accumulates token counts across aggregated files.
type Tally struct {
	Files  int
	Tokens int
}

// Add records the count of one file.
func (tally *Tally) Add(tokens int) {
	tally.Files++
	tally.Tokens += tokens
}
