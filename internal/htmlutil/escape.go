package htmlutil

import "strings"

var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape 转义 HTML 特殊字符，结果可安全放入文本节点或带引号的属性值。
func Escape(s string) string {
	return replacer.Replace(s)
}
