package layout

import (
	"errors"
	"fmt"
)

// Measured 是一次测量的结果：折行后的行与总高度。
type Measured struct {
	Lines  []TextLine
	Height float64
}

// Metrics 包装排版后端，是测量与绘制共用的唯一高度来源。
type Metrics struct {
	ts    Typesetter
	fonts map[string]FontResource
}

// NewMetrics 创建测量器。fonts 用于把样式中的字体名解析为资源。
func NewMetrics(ts Typesetter, fonts map[string]FontResource) *Metrics {
	return &Metrics{ts: ts, fonts: fonts}
}

// Measure 返回 text 在给定样式与宽度下的折行结果。同样的入参总是得到同样的结果。
func (m *Metrics) Measure(text string, style TextStyle, width float64) (Measured, error) {
	if m == nil || m.ts == nil {
		return Measured{}, &MeasurementError{Text: text, Width: width, Err: errors.New("缺少排版后端 Typesetter")}
	}
	if !finite(width) || width <= 0 {
		return Measured{}, &MeasurementError{Text: text, Width: width, Err: errors.New("宽度必须为正的有限值")}
	}
	if !finite(style.Size) || style.Size <= 0 {
		return Measured{}, &MeasurementError{Text: text, Width: width, Err: fmt.Errorf("字号无效: %g", style.Size)}
	}
	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = style.Size * defaultLineHeightFactor
	}

	lines, err := m.ts.LayoutLines(text, width, m.font(style.Font), style.Size, lineHeight)
	if err != nil {
		return Measured{}, &MeasurementError{Text: text, Width: width, Err: err}
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Height: style.Size}}
	}

	total := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = style.Size
		}
		if i == 0 || lines[i].GapBefore < 0 {
			lines[i].GapBefore = 0
		}
		total += lines[i].GapBefore + lines[i].Height
	}
	if !finite(total) {
		return Measured{}, &MeasurementError{Text: text, Width: width, Err: errors.New("测量结果不是有限值")}
	}
	return Measured{Lines: lines, Height: total}, nil
}

func (m *Metrics) font(name string) FontResource {
	if f, ok := m.fonts[name]; ok {
		return f
	}
	// 未声明的字体交给渲染器回退到默认字体
	return FontResource{Name: name}
}

// textBox 把测量结果放到指定位置。
func textBox(role Role, text string, style TextStyle, x, y, width float64, align Align, ms Measured) TextBox {
	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = style.Size * defaultLineHeightFactor
	}
	return TextBox{
		Box:        Box{X: x, Y: y, Width: width, Height: ms.Height},
		Role:       role,
		Content:    text,
		LineHeight: lineHeight,
		Font:       style.Font,
		FontSize:   style.Size,
		Color:      style.Color,
		Lines:      ms.Lines,
		Align:      align,
	}
}
