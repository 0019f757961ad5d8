package document

// Chunk 分块后的文本片段
// Index为分块序号（0起），决定输出文档中章节的排列顺序
type Chunk struct {
	Text  string // 分块文本内容
	Index int    // 分块序号
}

// SplitByLength 将文本切分为连续、不重叠的定长窗口
// 每块最多maxSize个字符（按rune计），最后一块可能更短；
// 所有分块按序拼接可无损还原原文。
// 不做任何句子或段落边界识别，这是有意保留的简化取舍。
func SplitByLength(text string, maxSize int) []Chunk {
	if text == "" || maxSize <= 0 {
		return nil
	}

	runes := []rune(text)
	chunks := make([]Chunk, 0, (len(runes)+maxSize-1)/maxSize)

	for i := 0; i < len(runes); i += maxSize {
		end := i + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:  string(runes[i:end]),
			Index: len(chunks),
		})
	}

	return chunks
}
