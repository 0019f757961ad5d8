package generator

import (
	"fmt"
)

// DefaultExcerptLimit 嵌入提示词的分块摘录上限（按字符计）
const DefaultExcerptLimit = 1500

const promptTemplate = `Generate a challenging %s question using this exact format:

[CONTENT]
%s

[REQUIREMENTS]
1. Question must be based on the content
2. Include four distinct options
3. Mark one correct answer
4. Use advanced medical terminology
5. Make the question difficult

[FORMAT]
Question: [Your question here]
a) [Option A]
b) [Option B]
c) [Option C]
d) [Option D]
Correct Answer: [Letter only]`

// BuildPrompt 为指定题型和分块内容构造提示词
// 分块超过 excerptLimit 时截断，避免提示词占满模型上下文；
// excerptLimit 非正时使用 DefaultExcerptLimit
func BuildPrompt(qt QuestionType, chunkText string, excerptLimit int) string {
	if excerptLimit <= 0 {
		excerptLimit = DefaultExcerptLimit
	}
	return fmt.Sprintf(promptTemplate, qt.Description, excerpt(chunkText, excerptLimit))
}

// excerpt 截取文本前 limit 个字符，保证不截断多字节字符
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
