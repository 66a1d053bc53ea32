package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Goldmark 使用 goldmark 渲染完整的 CommonMark，并用 bluemonday 清理输出。
// 转换失败时回退到 Lite。
type Goldmark struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewGoldmark 创建一个 Goldmark 转换器，可被多个 goroutine 共享。
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md:     goldmark.New(),
		policy: bluemonday.UGCPolicy(),
	}
}

// ToHTML 实现 Converter。
func (g *Goldmark) ToHTML(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		return ToHTML(text)
	}
	return strings.TrimSpace(g.policy.Sanitize(buf.String()))
}

// Engine 标识一种 markdown 实现。
type Engine string

const (
	EngineLite     Engine = "lite"
	EngineGoldmark Engine = "goldmark"
)

// New 按名称返回转换器，未知名称返回 false。
func New(engine Engine) (Converter, bool) {
	switch engine {
	case EngineLite, "":
		return Lite{}, true
	case EngineGoldmark:
		return NewGoldmark(), true
	default:
		return nil, false
	}
}
