package generate

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/types"
)

// streamLine is one record of the newline-delimited JSON generation body.
type streamLine struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// DecodeStream parses a raw generation response body into fragments.
// The body is a sequence of lines, each a JSON object with a "response"
// string and a "done" bool. Blank lines and lines that fail to parse are
// skipped; a malformed line never aborts the decode, since the server may
// interleave partial lines. Fragments come back in line order and are
// never merged here.
func DecodeStream(raw string, logger *zap.Logger) []types.Fragment {
	if logger == nil {
		logger = zap.NewNop()
	}
	var fragments []types.Fragment
	for _, line := range strings.Split(raw, "\n") {
		if frag, ok := decodeLine(line, logger); ok {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

// decodeLine parses a single response line. Lines with an empty "response"
// field (such as the bare done marker) yield no fragment.
func decodeLine(line string, logger *zap.Logger) (types.Fragment, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.Fragment{}, false
	}
	var rec streamLine
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		logger.Debug("skipping malformed response line", zap.Error(err))
		return types.Fragment{}, false
	}
	if rec.Response == "" {
		return types.Fragment{}, false
	}
	return types.Fragment{Text: rec.Response, Done: rec.Done}, true
}
