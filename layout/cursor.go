package layout

// Cursor 是纵向排版位置。它是值类型，各规划函数接收一个 Cursor 并返回推进后的新 Cursor，
// 不存在全局可变的 y。
type Cursor struct {
	Y float64
}

// Advance 返回向下移动 dy 后的位置。
func (c Cursor) Advance(dy float64) Cursor { return Cursor{Y: c.Y + dy} }

// Merge 用于并排的两列：取两者中更靠下的位置。
func (c Cursor) Merge(o Cursor) Cursor {
	if o.Y > c.Y {
		return o
	}
	return c
}
