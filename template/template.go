// Package template 将小票模板（dsl）编译为排版配置，并把订单数据绑定成 model.Document。
package template

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/posslip/dsl"
	"github.com/ByLCY/posslip/layout"
)

//go:embed default.slip
var defaultSource string

// Template 是编译后的小票模板：静态的排版参数加上各内容块的绑定规则。
type Template struct {
	Name    string
	Version string

	config    layout.Config
	titleText string
	header    headerSpec
	info      sectionSpec
	recipient sectionSpec
	items     itemsSpec
	totals    []totalSpec
	footer    []string
}

type headerSpec struct {
	logo    string
	qr      string
	title   string
	address []string
}

type sectionSpec struct {
	title  string
	fields []fieldSpec
}

type fieldSpec struct {
	label string
	value string
}

type itemsSpec struct {
	path     string
	name     string
	quantity string
	price    string
}

// totalSource 为 sum 时取明细金额之和。
const totalSum = "sum"

type totalSpec struct {
	label  string
	source string
	prefix string
}

// Parse 读取并编译模板。
func Parse(r io.Reader) (*Template, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return Compile(doc)
}

// ParseString 编译字符串形式的模板。
func ParseString(src string) (*Template, error) {
	return Parse(strings.NewReader(src))
}

// Default 返回内置的 57mm 小票模板。
func Default() (*Template, error) {
	return ParseString(defaultSource)
}

// Config 返回排版配置的副本。
func (t *Template) Config() layout.Config {
	cfg := t.config
	cfg.Table.Columns = append([]layout.ColumnSpec(nil), t.config.Table.Columns...)
	return cfg
}

// LogoPath 返回页眉 logo 的资源路径；模板未声明 logo 时为空。
func (t *Template) LogoPath() string { return t.header.logo }

// WithPageHeight 返回页高被覆盖的模板副本；height > 0 进入分页模式，0 为自动高度。
func (t *Template) WithPageHeight(height float64) *Template {
	out := *t
	out.config.Page.Height = height
	return &out
}
