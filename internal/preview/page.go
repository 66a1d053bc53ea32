package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

const DefaultTitle = "Issue Template Preview"

//go:embed style.css
var stylesheet string

//go:embed page.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// Options 控制外层文档。
type Options struct {
	Title string
	// RefreshSeconds 大于 0 时添加 meta refresh。
	RefreshSeconds int
}

type pageData struct {
	Title          string
	Style          template.CSS
	Content        template.HTML
	RefreshSeconds int
}

// Page 将渲染好的片段包装成完整的 HTML 文档。fragment 被视为可信 HTML。
func Page(fragment string, opts Options) (string, error) {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:          title,
		Style:          template.CSS(stylesheet),
		Content:        template.HTML(fragment),
		RefreshSeconds: opts.RefreshSeconds,
	})
	if err != nil {
		return "", fmt.Errorf("execute page template: %w", err)
	}
	return buf.String(), nil
}
