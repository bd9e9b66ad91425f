package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports token counts for context-budget enforcement. The BPE
// encoding is an approximation for non-OpenAI models, which is acceptable:
// the budget is a cost control, not a hard protocol limit.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func New(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %q: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
