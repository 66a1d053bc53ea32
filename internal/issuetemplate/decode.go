package issuetemplate

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotObject 表示解析结果不是映射类型。
var ErrNotObject = errors.New("expected an object")

// Decode 将任意 YAML/JSON 解码器产出的值转换为 Template。
// 未知键被忽略；缺失的字段保持零值。
func Decode(parsed any) (Template, error) {
	root, ok := asMap(parsed)
	if !ok {
		return Template{}, ErrNotObject
	}

	var (
		tpl Template
		err error
	)
	if tpl.Name, err = stringAt(root, "name", "name"); err != nil {
		return Template{}, err
	}
	if tpl.Description, err = stringAt(root, "description", "description"); err != nil {
		return Template{}, err
	}
	if tpl.Title, err = stringAt(root, "title", "title"); err != nil {
		return Template{}, err
	}
	if tpl.Labels, err = stringsAt(root, "labels"); err != nil {
		return Template{}, err
	}
	if tpl.Assignees, err = stringsAt(root, "assignees"); err != nil {
		return Template{}, err
	}

	items, ok := root["body"].([]any)
	if !ok {
		return tpl, nil
	}
	tpl.Body = make([]BodyField, 0, len(items))
	for i, item := range items {
		field, err := decodeField(item, fmt.Sprintf("body[%d]", i))
		if err != nil {
			return Template{}, err
		}
		tpl.Body = append(tpl.Body, field)
	}
	return tpl, nil
}

func decodeField(v any, path string) (BodyField, error) {
	m, ok := asMap(v)
	if !ok {
		return BodyField{}, nil
	}

	typ, err := stringAt(m, "type", path+".type")
	if err != nil {
		return BodyField{}, err
	}
	field := BodyField{Type: FieldType(typ)}
	if field.ID, err = stringAt(m, "id", path+".id"); err != nil {
		return BodyField{}, err
	}

	if validations, ok := asMap(m["validations"]); ok {
		required, _ := validations["required"].(bool)
		field.Validations.Required = required
	}

	attrs, ok := asMap(m["attributes"])
	field.Attributes.Default = -1
	if !ok {
		return field, nil
	}
	a := &field.Attributes
	for _, attr := range []struct {
		key string
		dst *string
	}{
		{"label", &a.Label},
		{"description", &a.Description},
		{"placeholder", &a.Placeholder},
		{"value", &a.Value},
	} {
		if *attr.dst, err = stringAt(attrs, attr.key, path+".attributes."+attr.key); err != nil {
			return BodyField{}, err
		}
	}
	a.Multiple = truthy(attrs["multiple"])
	if idx, ok := asInt(attrs["default"]); ok {
		a.Default = idx
	}

	opts, ok := attrs["options"].([]any)
	if !ok {
		return field, nil
	}
	a.Options = make([]Option, 0, len(opts))
	for i, opt := range opts {
		option, err := decodeOption(opt, fmt.Sprintf("%s.attributes.options[%d]", path, i))
		if err != nil {
			return BodyField{}, err
		}
		a.Options = append(a.Options, option)
	}
	return field, nil
}

func decodeOption(v any, path string) (Option, error) {
	if m, ok := asMap(v); ok {
		label, err := stringAt(m, "label", path+".label")
		if err != nil {
			return Option{}, err
		}
		return Option{Label: label, Required: truthy(m["required"])}, nil
	}
	label, err := scalarString(v, path)
	if err != nil {
		return Option{}, err
	}
	return Option{Label: label}, nil
}

// asMap 接受 yaml.v3 产出的两种映射类型。
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func stringAt(m map[string]any, key, path string) (string, error) {
	return scalarString(m[key], path)
}

func stringsAt(m map[string]any, key string) ([]string, error) {
	items, ok := m[key].([]any)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := scalarString(item, fmt.Sprintf("%s[%d]", key, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// scalarString 将标量格式化为文本。nil、false 和数值 0 视为缺失。
func scalarString(v any, path string) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case bool:
		if s {
			return "true", nil
		}
		return "", nil
	case int, int64, uint64, float64:
		if !truthy(s) {
			return "", nil
		}
		return formatNumber(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%s: expected a string, got %s", path, kindOf(v))
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case int:
		return b != 0
	case int64:
		return b != 0
	case uint64:
		return b != 0
	case float64:
		return b != 0
	default:
		return true
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "a sequence"
	case map[string]any, map[any]any:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
