package markdown

import (
	"regexp"
	"strings"

	"issuepreview/internal/htmlutil"
)

// Converter 将 markdown 文本转换为已转义的 HTML 片段。实现必须是全函数，不返回错误。
type Converter interface {
	ToHTML(text string) string
}

// Lite 只支持一级到三级标题、粗体、斜体和段落。
type Lite struct{}

// ToHTML 实现 Converter。
func (Lite) ToHTML(text string) string {
	return ToHTML(text)
}

var (
	// 先粗体后斜体。
	inlineRules = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>${1}</strong>"},
		{regexp.MustCompile(`__(.+?)__`), "<strong>${1}</strong>"},
		{regexp.MustCompile(`\*(.+?)\*`), "<em>${1}</em>"},
		{regexp.MustCompile(`_(.+?)_`), "<em>${1}</em>"},
	}

	// 长标记优先。
	headingRules = []struct {
		prefix string
		tag    string
	}{
		{"### ", "h3"},
		{"## ", "h2"},
		{"# ", "h1"},
	}
)

type line struct {
	text    string
	heading bool
}

// ToHTML 将 markdown-lite 文本转换为 HTML。
func ToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var paragraphs [][]line
	var current []line
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, convertHeading(raw))
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	out := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		if para[0].heading {
			out = append(out, passThrough(para))
			continue
		}
		out = append(out, formatParagraph(para))
	}
	return strings.Join(out, "<br><br>")
}

// convertHeading 要求 # 后有空格，"###Text" 保持原样。
func convertHeading(raw string) line {
	for _, rule := range headingRules {
		rest, ok := strings.CutPrefix(raw, rule.prefix)
		if !ok || rest == "" {
			continue
		}
		return line{
			text:    "<" + rule.tag + ">" + htmlutil.Escape(strings.TrimSpace(rest)) + "</" + rule.tag + ">",
			heading: true,
		}
	}
	return line{text: raw}
}

func passThrough(para []line) string {
	parts := make([]string, 0, len(para))
	for _, l := range para {
		if l.heading {
			parts = append(parts, l.text)
			continue
		}
		parts = append(parts, htmlutil.Escape(strings.TrimSpace(l.text)))
	}
	return strings.Join(parts, "\n")
}

func formatParagraph(para []line) string {
	parts := make([]string, 0, len(para))
	for _, l := range para {
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" {
			continue
		}
		html := htmlutil.Escape(trimmed)
		for _, rule := range inlineRules {
			html = rule.re.ReplaceAllString(html, rule.repl)
		}
		parts = append(parts, html)
	}
	return strings.Join(parts, " ")
}
