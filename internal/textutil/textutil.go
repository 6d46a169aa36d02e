// Package textutil 从 Markdown 源文本派生阅读时长、纯文本摘要与展示日期。
package textutil

import (
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// WordsPerMinute 估算阅读速度（词/分钟）
	WordsPerMinute = 200
	// DefaultExcerptLength 摘要默认最大字符数
	DefaultExcerptLength = 150
	// Ellipsis 截断摘要时追加的标记
	Ellipsis = "..."
)

// 顺序敏感：粗体先于斜体，图片先于链接。
var markdownStrippers = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "${1}"},
	{regexp.MustCompile(`\*(.*?)\*`), "${1}"},
	{regexp.MustCompile("`(.*?)`"), "${1}"},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "${1}"},
	{regexp.MustCompile(`>`), ""},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ReadingTime 按 200 词/分钟估算阅读分钟数，向上取整，至少 1 分钟。
// 空内容按一个词计算。
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		words = 1
	}
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// StripMarkdown 去除标题、粗体、斜体、行内代码、图片、链接与引用标记，
// 并把连续空白折叠为单个空格。
func StripMarkdown(content string) string {
	plain := content
	for _, s := range markdownStrippers {
		plain = s.pattern.ReplaceAllString(plain, s.repl)
	}
	plain = whitespaceRun.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}

// Excerpt 生成不超过 maxLength 个字符（另加省略号）的纯文本摘要。
// maxLength <= 0 时使用 DefaultExcerptLength。
func Excerpt(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}
	plain := StripMarkdown(content)
	runes := []rune(plain)
	if len(runes) <= maxLength {
		return plain
	}

	truncated := runes[:maxLength]
	lastSpace := -1
	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == ' ' {
			lastSpace = i
			break
		}
	}
	if lastSpace > 0 {
		return string(truncated[:lastSpace]) + Ellipsis
	}
	return string(truncated) + Ellipsis
}

// FormatDate 以固定的 en-US 长格式渲染日期，例如 "March 5, 2024"。
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
