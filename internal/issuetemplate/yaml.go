package issuetemplate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML 使用 yaml.v3 解码模板源文本。空文档返回 nil。
func ParseYAML(src string) (any, error) {
	var out any
	if err := yaml.Unmarshal([]byte(src), &out); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return out, nil
}

var _ ParseFunc = ParseYAML
