package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"options-advisor/internal/models"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Console: true}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_FileRotation(t *testing.T) {
	path := t.TempDir() + "/logs/advisor.log"
	logger := NewLoggerWithConfig(LogConfig{Level: "info", File: true, FilePath: path, MaxSize: 1})

	logger.Info().Msg("to file")

	assert.FileExists(t, path)
}

func TestLogRecommendation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	expiry := "26-Feb-2026"

	LogRecommendation(logger, models.Recommendation{
		Symbol: "NIFTY", OptionType: models.OptionTypeCE, Strike: 22500,
		Source: models.SourceChain, Expiry: &expiry,
	})

	out := buf.String()
	assert.Contains(t, out, `"event":"recommendation"`)
	assert.Contains(t, out, `"strike":22500`)
	assert.Contains(t, out, `"expiry":"26-Feb-2026"`)
}

func TestLogAPICall(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogAPICall(logger, "GET", "/api/option-chain-indices", 15*time.Millisecond, errors.New("boom"))

	assert.Contains(t, buf.String(), "API call failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSymbol(zerolog.New(&buf), "TCS")

	fromCtx := FromContext(WithLogger(context.Background(), logger))
	fromCtx.Info().Msg("hi")
	fallback := FromContext(context.Background())
	fallback.Info().Msg("dropped")

	assert.Contains(t, buf.String(), `"symbol":"TCS"`)
	assert.NotContains(t, buf.String(), "dropped")
}
