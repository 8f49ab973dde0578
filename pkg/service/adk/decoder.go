package adk

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/newsverify/adkbridge/pkg/model"
	"github.com/newsverify/adkbridge/pkg/utils/logging"
	"github.com/newsverify/adkbridge/pkg/utils/metrics"
)

// maxLineBytes bounds a single streamed line. Engine fragments carry
// whole model answers, so the limit is generous.
const maxLineBytes = 10 * 1024 * 1024

// decodeStream consumes a newline-delimited JSON stream to completion
// and returns the text of the last fragment carrying a non-empty text
// part, or "" when no fragment yielded one. Blank lines are skipped and
// unparseable lines are discarded without aborting the decode; the
// discard count is returned so callers and tests can observe it. A read
// error on the underlying stream is returned as-is; transport-level
// interpretation belongs to the caller.
func decodeStream(ctx context.Context, r io.Reader) (string, int, error) {
	logger := logging.From(ctx)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var final string
	discarded := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var frag model.StreamFragment
		if err := json.Unmarshal([]byte(line), &frag); err != nil {
			discarded++
			metrics.DiscardedLines.Inc()
			logger.Debug("discarded unparseable stream line", "line", truncate(line, 100))
			continue
		}

		// The engine is expected to emit the authoritative answer as
		// its last textual part, so later parts win.
		for _, part := range frag.Content.Parts {
			if part.Text != "" {
				final = part.Text
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", discarded, err
	}

	return final, discarded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
