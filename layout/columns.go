package layout

import (
	"fmt"
	"strings"
)

// Field 指明一列显示明细的哪个值。
type Field string

const (
	FieldName      Field = "name"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unit-price"
	FieldAmount    Field = "amount"
)

// ParseField 识别列名及其常见别名。
func ParseField(name string) (Field, bool) {
	switch strings.ToLower(name) {
	case "name", "item", "description", "product":
		return FieldName, true
	case "qty", "quantity":
		return FieldQuantity, true
	case "price", "unit-price", "unitprice", "rate":
		return FieldUnitPrice, true
	case "amount", "total", "line-total":
		return FieldAmount, true
	}
	return "", false
}

// ColumnSpec 描述表格中的一列。
type ColumnSpec struct {
	Name   string  `json:"name"`
	Header string  `json:"header"`
	Field  Field   `json:"field"`
	Width  float64 `json:"width"`
	Align  Align   `json:"align"`
}

// TableLayout 是有序的列定义，列宽之和不超过可用宽度。
type TableLayout struct {
	Columns []ColumnSpec `json:"columns"`
}

const widthEpsilon = 1e-6

// Validate 校验列宽与对齐方式。表格内部不允许居中对齐。
func (t TableLayout) Validate(usableWidth float64) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("表格至少需要一列")
	}
	sum := 0.0
	seen := map[string]bool{}
	for _, col := range t.Columns {
		if col.Width <= 0 || !finite(col.Width) {
			return fmt.Errorf("列 %s 宽度无效: %g", col.Name, col.Width)
		}
		switch col.Align {
		case AlignStart, AlignEnd:
		case AlignCenter:
			return fmt.Errorf("列 %s 不支持居中对齐", col.Name)
		default:
			return fmt.Errorf("列 %s 对齐方式未知: %q", col.Name, col.Align)
		}
		if seen[col.Name] {
			return fmt.Errorf("列名重复: %s", col.Name)
		}
		seen[col.Name] = true
		sum += col.Width
	}
	if sum > usableWidth+widthEpsilon {
		return fmt.Errorf("列宽之和 %.3fmm 超过可用宽度 %.3fmm", sum, usableWidth)
	}
	return nil
}

// Offsets 返回每列相对表格左边缘的 x 偏移。
func (t TableLayout) Offsets() []float64 {
	out := make([]float64, len(t.Columns))
	x := 0.0
	for i, col := range t.Columns {
		out[i] = x
		x += col.Width
	}
	return out
}

// AmountColumn 返回显示行金额的列，合计区的数值与其右对齐。
func (t TableLayout) AmountColumn() (ColumnSpec, float64, bool) {
	offsets := t.Offsets()
	for i, col := range t.Columns {
		if col.Field == FieldAmount {
			return col, offsets[i], true
		}
	}
	return ColumnSpec{}, 0, false
}
