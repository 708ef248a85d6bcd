package prompt

import (
	"sync"

	"github.com/Laisky/zap"
	"github.com/pkoukk/tiktoken-go"

	"github.com/scriptgen-ra/scriptgen/common/logger"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens approximates the prompt token count of a message sequence
// using the cl100k_base encoding. When the encoding cannot be loaded the
// estimate degrades to a characters/4 heuristic. The count is advisory and
// only used for logging and bookkeeping, never for truncation.
func EstimateTokens(messages []Message) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Logger.Warn("token encoding unavailable, falling back to heuristic",
				zap.Error(err))
			return
		}
		encoder = enc
	})

	total := 0
	for _, m := range messages {
		if encoder != nil {
			// Per-message framing overhead of the chat format.
			total += len(encoder.Encode(m.Content, nil, nil)) + 4
		} else {
			total += len(m.Content)/4 + 4
		}
	}
	return total
}
