package layout

import "strings"

// Fragment 是内容块中的一段文本，带有自己的样式、宽度与对齐方式。
type Fragment struct {
	Role  Role
	Text  string
	Style TextStyle
	Width float64
	Align Align
}

// Block 是一个非表格内容块的排版结果。Height 含块后间距，Box 只覆盖文本本身。
type Block struct {
	Name   string
	Box    Box
	Height float64
	Texts  []TextBox
}

// Empty 报告该块是否没有任何文本。
func (b Block) Empty() bool { return len(b.Texts) == 0 }

// PlanBlock 自上而下堆叠各片段：高度 = Σ 片段测量高度 + spacing。
// 空白片段直接跳过，不占高度；全部为空时整块高度为 0，也不加 spacing。
func PlanBlock(m *Metrics, name string, at Cursor, x, width float64, frags []Fragment, spacing float64) (Block, Cursor, error) {
	block := Block{Name: name, Box: Box{X: x, Y: at.Y, Width: width}}
	cur := at
	for _, f := range frags {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		w := f.Width
		if w <= 0 {
			w = width
		}
		ms, err := m.Measure(f.Text, f.Style, w)
		if err != nil {
			return Block{}, at, err
		}
		block.Texts = append(block.Texts, textBox(f.Role, f.Text, f.Style, x, cur.Y, w, f.Align, ms))
		cur = cur.Advance(ms.Height)
	}
	if block.Empty() {
		return block, at, nil
	}
	block.Box.Height = cur.Y - at.Y
	block.Height = block.Box.Height + spacing
	return block, cur.Advance(spacing), nil
}
