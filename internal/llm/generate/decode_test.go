package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeStreamConcatenation(t *testing.T) {
	raw := `{"response":"This ","done":false}
{"response":"is ","done":false}
{"response":"better.","done":true}`

	fragments := DecodeStream(raw, zap.NewNop())
	require.Len(t, fragments, 3)

	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Text)
	}
	assert.Equal(t, "This is better.", sb.String())
	assert.False(t, fragments[0].Done)
	assert.True(t, fragments[2].Done)
}

func TestDecodeStreamSkipsMalformedLines(t *testing.T) {
	raw := `{"response":"good ","done":false}
{"response":"trunc
not json at all
{"response":"lines.","done":true}`

	fragments := DecodeStream(raw, zap.NewNop())
	require.Len(t, fragments, 2)
	assert.Equal(t, "good ", fragments[0].Text)
	assert.Equal(t, "lines.", fragments[1].Text)
}

func TestDecodeStreamSkipsBlankLinesAndEmptyResponses(t *testing.T) {
	raw := "\n   \n" + `{"response":"","done":false}` + "\n" + `{"response":"only","done":true}` + "\n\n"

	fragments := DecodeStream(raw, zap.NewNop())
	require.Len(t, fragments, 1)
	assert.Equal(t, "only", fragments[0].Text)
}

func TestDecodeStreamEmptyInput(t *testing.T) {
	assert.Empty(t, DecodeStream("", zap.NewNop()))
	assert.Empty(t, DecodeStream("\n\n\n", zap.NewNop()))
}
