package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	ctx = WithComponent(ctx, "selector")
	FromCtx(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"selector"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestGooseLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())

	NewGooseLoggerFromCtx(ctx).Printf("OK   %s\n", "00001_messages.sql")

	assert.Contains(t, buf.String(), "00001_messages.sql")
	assert.Contains(t, buf.String(), `"component":"migrations"`)
}
