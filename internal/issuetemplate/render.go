package issuetemplate

import (
	"errors"
	"fmt"
	"strings"

	"issuepreview/internal/htmlutil"
	"issuepreview/internal/markdown"
)

const (
	invalidFormatHTML = `<p class="error">Invalid YAML format: Expected an object</p>`
	requiredMarker    = `<span class="required-asterisk"> *</span>`
)

// ParseFunc 将模板源文本解码为通用值，例如 ParseYAML。
type ParseFunc func(src string) (any, error)

// Renderer 将 issue 模板渲染为 HTML 片段。零值不可用，请使用 NewRenderer。
type Renderer struct {
	md markdown.Converter
}

// RendererOption 配置 Renderer。
type RendererOption func(*Renderer)

// WithMarkdown 替换描述和 markdown 块使用的转换器。
func WithMarkdown(c markdown.Converter) RendererOption {
	return func(r *Renderer) {
		if c != nil {
			r.md = c
		}
	}
}

// NewRenderer 创建 Renderer，默认使用 markdown.Lite。
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{md: markdown.Lite{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render 使用默认 Renderer 渲染已解析的模板。
func Render(parsed any) string {
	return defaultRenderer.Render(parsed)
}

// RenderSource 先用 parse 解码 src，再渲染结果。解析错误以错误片段的形式返回。
func (r *Renderer) RenderSource(src string, parse ParseFunc) (html string) {
	defer recoverInto(&html)

	parsed, err := parse(src)
	if err != nil {
		return errorHTML(err)
	}
	return r.Render(parsed)
}

// Render 渲染已解析的模板。任何输入都会得到一个 HTML 片段，不会 panic。
func (r *Renderer) Render(parsed any) (html string) {
	defer recoverInto(&html)

	tpl, err := Decode(parsed)
	if errors.Is(err, ErrNotObject) {
		return invalidFormatHTML
	}
	if err != nil {
		return errorHTML(err)
	}
	return r.RenderTemplate(tpl)
}

// RenderTemplate 渲染已解码的模板。
func (r *Renderer) RenderTemplate(tpl Template) string {
	var b strings.Builder
	b.WriteString(`<div class="issue-template">`)

	if tpl.Name != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", htmlutil.Escape(tpl.Name))
	}
	if tpl.Description != "" {
		fmt.Fprintf(&b, `<p class="description">%s</p>`, htmlutil.Escape(tpl.Description))
	}
	if tpl.Title != "" {
		fmt.Fprintf(&b, `<div class="field"><label>Title</label><input type="text" value="%s" readonly /></div>`,
			htmlutil.Escape(tpl.Title))
	}
	if tpl.Labels != nil {
		b.WriteString(`<div class="field"><label>Labels</label><div class="labels">`)
		for _, label := range tpl.Labels {
			fmt.Fprintf(&b, `<span class="label">%s</span>`, htmlutil.Escape(label))
		}
		b.WriteString(`</div></div>`)
	}
	if tpl.Assignees != nil {
		names := make([]string, 0, len(tpl.Assignees))
		for _, assignee := range tpl.Assignees {
			names = append(names, fmt.Sprintf(`<span class="assignee">@%s</span>`, htmlutil.Escape(assignee)))
		}
		fmt.Fprintf(&b, `<div class="field"><label>Assignees</label><div class="assignees">%s</div></div>`,
			strings.Join(names, ", "))
	}
	if tpl.Body != nil {
		b.WriteString(`<div class="body-fields">`)
		for _, field := range tpl.Body {
			r.renderField(&b, field)
		}
		b.WriteString(`</div>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}

func (r *Renderer) renderField(b *strings.Builder, field BodyField) {
	if field.Type == "" {
		return
	}

	attrs := field.Attributes
	required := field.Validations.Required

	b.WriteString(`<div class="body-field">`)
	defer b.WriteString(`</div>`)

	switch field.Type {
	case FieldMarkdown:
		if attrs.Value != "" {
			fmt.Fprintf(b, `<div class="markdown-content">%s</div>`, r.md.ToHTML(attrs.Value))
		}
	case FieldTextarea:
		r.renderLabel(b, field)
		fmt.Fprintf(b, `<textarea placeholder="%s"%s>%s</textarea>`,
			htmlutil.Escape(attrs.Placeholder), requiredAttr(required), htmlutil.Escape(attrs.Value))
	case FieldInput:
		r.renderLabel(b, field)
		fmt.Fprintf(b, `<input type="text" placeholder="%s" value="%s"%s />`,
			htmlutil.Escape(attrs.Placeholder), htmlutil.Escape(attrs.Value), requiredAttr(required))
	case FieldDropdown:
		r.renderLabel(b, field)
		if attrs.Multiple {
			b.WriteString(`<select multiple>`)
		} else {
			b.WriteString(`<select>`)
		}
		for i, opt := range attrs.Options {
			selected := ""
			if i == attrs.Default {
				selected = " selected"
			}
			fmt.Fprintf(b, `<option%s>%s</option>`, selected, htmlutil.Escape(opt.Label))
		}
		b.WriteString(`</select>`)
	case FieldCheckboxes:
		r.renderLabel(b, field)
		for _, opt := range attrs.Options {
			fmt.Fprintf(b, `<div class="checkbox-option"><input type="checkbox"%s /><span>%s</span></div>`,
				requiredAttr(opt.Required), htmlutil.Escape(opt.Label))
		}
	}
}

// renderLabel 输出各输入类字段共用的标签和可选描述。
func (r *Renderer) renderLabel(b *strings.Builder, field BodyField) {
	marker := ""
	if field.Validations.Required {
		marker = requiredMarker
	}
	fmt.Fprintf(b, "<label>%s%s</label>", htmlutil.Escape(field.DisplayLabel()), marker)
	if field.Attributes.Description != "" {
		fmt.Fprintf(b, `<p class="field-description">%s</p>`, r.md.ToHTML(field.Attributes.Description))
	}
}

func requiredAttr(required bool) string {
	if required {
		return " required"
	}
	return ""
}

func errorHTML(err error) string {
	return `<p class="error">Error parsing template: ` + htmlutil.Escape(err.Error()) + `</p>`
}

func recoverInto(html *string) {
	if rec := recover(); rec != nil {
		*html = errorHTML(fmt.Errorf("%v", rec))
	}
}
