package classpatherr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archscan/classpathfs/classpatherr"
)

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, classpatherr.Wrap(nil, classpatherr.CodeNotFound, "open", "a.jar"))
}

func TestErrorMessageIncludesPath(t *testing.T) {
	err := classpatherr.New(classpatherr.CodeNotFound, "open", "lib/a.jar", "does not exist")
	assert.Contains(t, err.Error(), "lib/a.jar")
	assert.Contains(t, err.Error(), string(classpatherr.CodeNotFound))
}

func TestIsCodeMatchesThroughWrapping(t *testing.T) {
	base := classpatherr.New(classpatherr.CodeClosed, "open", "", "handler closed")
	wrapped := classpatherr.Wrap(base, classpatherr.CodeClosed, "resolve", "")
	assert.True(t, classpatherr.IsCode(wrapped, classpatherr.CodeClosed))
	assert.False(t, classpatherr.IsCode(wrapped, classpatherr.CodeTooLarge))
}

func TestClassification(t *testing.T) {
	mapping := classpatherr.New(classpatherr.CodeMapping, "mmap", "", "boom")
	require.Equal(t, classpatherr.ClassificationRetryable, mapping.Classification())

	notFound := classpatherr.New(classpatherr.CodeNotFound, "open", "", "boom")
	require.Equal(t, classpatherr.ClassificationPermanent, notFound.Classification())
}

func TestWithContext(t *testing.T) {
	err := classpatherr.New(classpatherr.CodeExtraction, "extract", "outer.jar!inner.jar", "copy failed").
		WithContext("tempFile", "/tmp/x")
	assert.Equal(t, "/tmp/x", err.Context()["tempFile"])
}

func TestJoinAggregatesErrors(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")
	joined := classpatherr.Join(classpatherr.CodeClosed, "close", "", e1, e2)
	require.NotNil(t, joined)
	assert.ErrorIs(t, joined, e1)
	assert.ErrorIs(t, joined, e2)
}

func TestJoinAllNilReturnsNil(t *testing.T) {
	assert.Nil(t, classpatherr.Join(classpatherr.CodeClosed, "close", ""))
}
