package layout

import (
	"math"

	"github.com/ByLCY/posslip/model"
)

// Row 是表格一行（表头或明细）的排版结果。
type Row struct {
	Box
	Item   int
	Header bool
	Cells  []TextBox
}

// CellText 返回明细在某列上的显示文本：名称列为拼好的商品名，数值列原样输出。
func CellText(item model.LineItem, col ColumnSpec) string {
	switch col.Field {
	case FieldQuantity:
		return item.QuantityText()
	case FieldUnitPrice:
		return item.UnitPriceText()
	case FieldAmount:
		return item.AmountText()
	default:
		return item.Name
	}
}

// PlanItemRow 规划一条明细。行高 = max(各列折行高度, minRowHeight)。
func PlanItemRow(m *Metrics, at Cursor, x float64, index int, item model.LineItem, table TableLayout, style TextStyle, minRowHeight float64) (Row, Cursor, error) {
	cells := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cells[i] = CellText(item, col)
	}
	row, err := planCells(m, at, x, table, cells, style, minRowHeight, RoleCell)
	if err != nil {
		return Row{}, at, err
	}
	row.Item = index
	return row, at.Advance(row.Height), nil
}

// PlanHeaderRow 规划表头行，规则与明细行相同。
func PlanHeaderRow(m *Metrics, at Cursor, x float64, table TableLayout, style TextStyle, minRowHeight float64) (Row, Cursor, error) {
	cells := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cells[i] = col.Header
	}
	row, err := planCells(m, at, x, table, cells, style, minRowHeight, RoleTableHeader)
	if err != nil {
		return Row{}, at, err
	}
	row.Item = -1
	row.Header = true
	return row, at.Advance(row.Height), nil
}

func planCells(m *Metrics, at Cursor, x float64, table TableLayout, cells []string, style TextStyle, minRowHeight float64, role Role) (Row, error) {
	offsets := table.Offsets()
	row := Row{Box: Box{X: x, Y: at.Y}}
	height := minRowHeight
	for i, col := range table.Columns {
		row.Width += col.Width
		text := cells[i]
		if text == "" {
			continue
		}
		ms, err := m.Measure(text, style, col.Width)
		if err != nil {
			return Row{}, err
		}
		row.Cells = append(row.Cells, textBox(role, text, style, x+offsets[i], at.Y, col.Width, col.Align, ms))
		height = math.Max(height, ms.Height)
	}
	row.Height = height
	return row, nil
}
