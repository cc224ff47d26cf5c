package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nperrors "github.com/YuminosukeSato/npdr/pkg/errors"
)

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "info"))

	lg := Logger()
	lg.Info().Str(OperationKey, "fit").Msg("scoring run complete")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "npdr", event[ComponentKey])
	assert.Equal(t, "fit", event[OperationKey])
	assert.Equal(t, "scoring run complete", event["message"])
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "warn"))

	lg := Logger()
	lg.Info().Msg("suppressed")
	assert.Zero(t, buf.Len())

	lg.Warn().Msg("emitted")
	assert.NotZero(t, buf.Len())
}

func TestSetup_InvalidLevel(t *testing.T) {
	err := Setup(&bytes.Buffer{}, "verbose")
	require.Error(t, err)
	var ve *nperrors.ValidationError
	assert.True(t, nperrors.As(err, &ve))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "debug"))

	lg := With("Scorer")
	lg.Debug().Msg("child logger")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "Scorer", event[ScorerKey])
}

func TestWarningBridge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "warn"))

	nperrors.Warn(nperrors.NewEmptyNeighborhoodWarning(7, "multisurf", 2.5))

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "warn", event["level"])

	warning, ok := event[WarningKey].(map[string]interface{})
	require.True(t, ok, "warning payload is a structured object")
	assert.Equal(t, float64(7), warning["sample_index"])
	assert.Equal(t, "multisurf", warning["policy"])
}
