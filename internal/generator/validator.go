package generator

import (
	"regexp"
	"strings"
)

// minQuestionLength 有效题目的最小长度（去除首尾空白后）
const minQuestionLength = 50

// requiredMarkers 合格题目必须包含的格式标记
// 全部按忽略大小写匹配
var requiredMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Question:`),
	regexp.MustCompile(`(?i)a\)`),
	regexp.MustCompile(`(?i)b\)`),
	regexp.MustCompile(`(?i)c\)`),
	regexp.MustCompile(`(?i)d\)`),
	regexp.MustCompile(`(?i)Correct Answer: [a-d]`),
}

// Validate 校验生成文本是否符合选择题格式
// 要求：去除首尾空白后不少于 minQuestionLength 个字符，
// 且包含题干、四个选项和 a-d 范围内的答案标记。
// 校验过程中出现任何异常均视为不合格
func Validate(text string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	if len([]rune(strings.TrimSpace(text))) < minQuestionLength {
		return false
	}

	for _, marker := range requiredMarkers {
		if !marker.MatchString(text) {
			return false
		}
	}
	return true
}
