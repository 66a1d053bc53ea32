package content

import (
	"html/template"

	"issuepreview/internal/issuetemplate"
)

// RenderHTML 将 Entry 渲染成 HTML 片段。解析或结构错误以错误片段的形式出现在结果中。
func RenderHTML(entry Entry, r *issuetemplate.Renderer) template.HTML {
	return template.HTML(r.RenderSource(entry.Raw, issuetemplate.ParseYAML))
}

// Summary 是模板列表中展示的信息。
type Summary struct {
	Name        string
	Description string
	Fields      int
	// 源文本无法解码为模板时设置 Err。
	Err error
}

// Summarize 提取模板的名称和描述，用于列表展示。
func Summarize(entry Entry) Summary {
	parsed, err := issuetemplate.ParseYAML(entry.Raw)
	if err != nil {
		return Summary{Err: err}
	}
	tpl, err := issuetemplate.Decode(parsed)
	if err != nil {
		return Summary{Err: err}
	}
	return Summary{
		Name:        tpl.Name,
		Description: tpl.Description,
		Fields:      len(tpl.Body),
	}
}
