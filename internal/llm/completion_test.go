package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEchoStripStrategy 测试回显剥离策略
func TestEchoStripStrategy(t *testing.T) {
	s := &EchoStripStrategy{}

	t.Run("prompt echoed at head", func(t *testing.T) {
		got := s.Extract("PROMPT", "PROMPT  completion text  ")
		assert.Equal(t, "completion text", got)
	})

	t.Run("no echo falls back to full text", func(t *testing.T) {
		got := s.Extract("PROMPT", "  bare completion  ")
		assert.Equal(t, "bare completion", got)
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		// 补全中再次出现提示词片段时，取最后一次回显之后的内容
		got := s.Extract("Q:", "Q: something Q: the answer")
		assert.Equal(t, "the answer", got)
	})

	t.Run("empty prompt", func(t *testing.T) {
		got := s.Extract("", " raw ")
		assert.Equal(t, "raw", got)
	})
}

// TestPassthroughStrategy 测试直通策略
func TestPassthroughStrategy(t *testing.T) {
	s := &PassthroughStrategy{}
	got := s.Extract("ignored", "  only completion  ")
	assert.Equal(t, "only completion", got)
}
