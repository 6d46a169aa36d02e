// Package render 把文章 Markdown 渲染为 HTML。
// 原始 HTML 不会透传（goldmark 默认安全模式），javascript: 等危险链接会被丢弃。
// 代码块由 chroma 高亮，只输出 CSS class，样式表见 HighlightCSS。
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HighlightStyle chroma 配色
const HighlightStyle = "github"

// Renderer 无状态，可并发复用
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(HighlightStyle),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				),
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

// Render 返回 HTML 字节
func (r *Renderer) Render(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderHTML 供模板直接嵌入
func (r *Renderer) RenderHTML(markdown string) (template.HTML, error) {
	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

var highlightCSS = sync.OnceValue(func() template.CSS {
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, styles.Get(HighlightStyle)); err != nil {
		return ""
	}
	return template.CSS(buf.String())
})

// HighlightCSS 代码高亮用到的 class 样式表
func HighlightCSS() template.CSS { return highlightCSS() }
