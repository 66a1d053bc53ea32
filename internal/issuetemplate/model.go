package issuetemplate

// FieldType 表示 body 字段的种类。
type FieldType string

const (
	FieldMarkdown   FieldType = "markdown"
	FieldTextarea   FieldType = "textarea"
	FieldInput      FieldType = "input"
	FieldDropdown   FieldType = "dropdown"
	FieldCheckboxes FieldType = "checkboxes"
)

// Template 是一个 issue 表单模板。nil 切片表示字段缺失，空切片表示字段存在但为空。
type Template struct {
	Name        string
	Description string
	Title       string
	Labels      []string
	Assignees   []string
	Body        []BodyField
}

// BodyField 是表单中的一个控件。Type 为空表示该条目不产生任何输出。
type BodyField struct {
	Type        FieldType
	ID          string
	Attributes  Attributes
	Validations Validations
}

// Attributes 是 body 字段的展示属性。
type Attributes struct {
	Label       string
	Description string
	Placeholder string
	Value       string
	Options     []Option
	Multiple    bool
	// Default 是 dropdown 默认选中项的下标，未设置时为 -1。
	Default int
}

// Validations 是 body 字段的校验规则。
type Validations struct {
	Required bool
}

// Option 是 dropdown 或 checkboxes 的一个选项。
type Option struct {
	Label    string
	Required bool
}

// DisplayLabel 返回 attributes.label，为空时回退到字段 id。
func (f BodyField) DisplayLabel() string {
	if f.Attributes.Label != "" {
		return f.Attributes.Label
	}
	return f.ID
}
