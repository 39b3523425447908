package layout

import "fmt"

// MeasurementError 表示排版后端无法测量给定文本（例如宽度非有限值）。致命错误。
type MeasurementError struct {
	Text  string
	Width float64
	Err   error
}

func (e *MeasurementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("测量文本 %q 失败 (width=%g): %v", e.Text, e.Width, e.Err)
	}
	return fmt.Sprintf("测量文本 %q 失败 (width=%g)", e.Text, e.Width)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// RowOverflowError 表示分页模式下单行高度超过了一整页的可用高度。
type RowOverflowError struct {
	Item      int
	Name      string
	Height    float64
	Available float64
}

func (e *RowOverflowError) Error() string {
	return fmt.Sprintf("第 %d 行明细 %q 高度 %.2fmm 超过单页可用高度 %.2fmm", e.Item+1, e.Name, e.Height, e.Available)
}

// BlockOverflowError 表示分页模式下某个不可拆分的内容块比空白页还高。
type BlockOverflowError struct {
	Block     string
	Height    float64
	Available float64
}

func (e *BlockOverflowError) Error() string {
	return fmt.Sprintf("内容块 %s 高度 %.2fmm 超过单页可用高度 %.2fmm", e.Block, e.Height, e.Available)
}
