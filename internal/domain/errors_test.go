package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionMismatchError(t *testing.T) {
	err := fmt.Errorf("insert id 7: %w", &DimensionMismatchError{Op: "add", Expected: 3, Actual: 2})

	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.NotErrorIs(t, err, ErrConfiguration)

	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Contains(t, err.Error(), "expected 3, got 2")
}

func TestOracleError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewOracleError("embed", cause)

	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	again := NewOracleError("build", fmt.Errorf("chunk 3: %w", err))
	var oe *OracleError
	require.True(t, errors.As(again, &oe))
	assert.Equal(t, "embed", oe.Op)
}

func TestConfigf(t *testing.T) {
	err := Configf("overlap %d >= chunk size %d", 4, 4)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "configuration error: overlap 4 >= chunk size 4", err.Error())
}

func TestArticleKey(t *testing.T) {
	a := Article{Title: "t", Author: "a", Date: "d", Text: "body"}
	b := a
	b.Bio = "different bio"
	c := a
	c.Text = "other body"

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Len(t, a.Key(), 24)
}

func TestNewPassage(t *testing.T) {
	c := Chunk{ID: 4, Text: "x", Metadata: Metadata{Title: "T", Author: "A", Date: "D", Bio: "B", Source: "S"}}
	p := NewPassage(c, 0.5)
	assert.Equal(t, Passage{ID: 4, Text: "x", Title: "T", Author: "A", Date: "D", Bio: "B", Source: "S", Distance: 0.5}, p)
}
