package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("boom") }

func TestCountBytesText(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, result.Counted)
	assert.Equal(t, 5, result.Tokens)
}

func TestCountBytesEmpty(t *testing.T) {
	result, err := CountBytes(testCounter{}, nil)
	require.NoError(t, err)
	assert.True(t, result.Counted)
	assert.Zero(t, result.Tokens)
}

func TestCountBytesBinary(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	assert.False(t, result.Counted)
}

func TestCountBytesErrors(t *testing.T) {
	_, nilError := CountBytes(nil, []byte("x"))
	assert.ErrorIs(t, nilError, ErrNilCounter)

	_, countError := CountBytes(failingCounter{}, []byte("x"))
	assert.EqualError(t, countError, "boom")
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(3)
	tally.Add(4)
	assert.Equal(t, Tally{Files: 2, Tokens: 7}, tally)
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{})
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	require.NotNil(t, counter)
	assert.Equal(t, DefaultModel, model)
	tokens, countErr := counter.CountString("hello world")
	require.NoError(t, countErr)
	assert.Positive(t, tokens)
}

func TestNewCounterUnknownModelFallsBack(t *testing.T) {
	counter, model, err := NewCounter(Config{Model: "made-up-model"})
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	assert.Equal(t, defaultEncodingName, model)
	assert.Equal(t, defaultEncodingName, counter.Name())
}
