package layout

import (
	"fmt"
	"math"
)

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。折行算法归排版后端所有，
// 同样的入参必须得到同样的结果。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64) ([]TextLine, error)
}

// TextStyle 描述一段文本使用的字体、字号与行高（mm）。
type TextStyle struct {
	Font       string  `json:"font"`
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
	Color      Color   `json:"color"`
}

// PageSpec 描述页面宽度、高度与边距。Height 为 0 表示单页自动高度模式。
type PageSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// Paginated 报告是否处于固定页高的分页模式。
func (p PageSpec) Paginated() bool { return p.Height > 0 }

// UsableWidth 返回去掉左右边距后的内容宽度。
func (p PageSpec) UsableWidth() float64 { return p.Width - p.Margin.Left - p.Margin.Right }

// Spacing 汇集各内容块之间的固定间距（mm）。
type Spacing struct {
	Top        float64 `json:"top"`        // 上边距之后、页眉之前的留白
	Header     float64 `json:"header"`     // 页眉图片行之后
	Section    float64 `json:"section"`    // 并排信息块之后
	Rule       float64 `json:"rule"`       // 表头分隔线之后
	Totals     float64 `json:"totals"`     // 明细结束到合计区
	TotalRow   float64 `json:"totalRow"`   // 合计行最小行高
	GrandTotal float64 `json:"grandTotal"` // 总计行之前额外留白
	Footer     float64 `json:"footer"`     // 合计区到页脚，分隔线画在中间
	Bottom     float64 `json:"bottom"`     // 页脚之后、下边距之前的留白
}

// Config 是排版引擎的全部参数：页面、样式、列定义与间距。
type Config struct {
	Page         PageSpec                `json:"page"`
	Fonts        map[string]FontResource `json:"fonts"`
	Body         TextStyle               `json:"body"`
	Bold         TextStyle               `json:"bold"`
	Table        TableLayout             `json:"table"`
	MinRowHeight float64                 `json:"minRowHeight"`
	Spacing      Spacing                 `json:"spacing"`
	InfoRatio    float64                 `json:"infoRatio"`   // 左侧订单信息占可用宽度的比例
	TotalsRatio  float64                 `json:"totalsRatio"` // 合计标签起点占可用宽度的比例
	LogoWidth    float64                 `json:"logoWidth"`
	LogoHeight   float64                 `json:"logoHeight"`
	QRSize       float64                 `json:"qrSize"`
	RuleWidth    float64                 `json:"ruleWidth"`
	RuleColor    Color                   `json:"ruleColor"`
	Meta         DocumentMeta            `json:"meta"`
}

// Validate 检查配置能否支撑排版，错误信息指出具体字段。
func (c Config) Validate() error {
	if !finite(c.Page.Width) || c.Page.Width <= 0 {
		return fmt.Errorf("页面宽度无效: %g", c.Page.Width)
	}
	if !finite(c.Page.Height) || c.Page.Height < 0 {
		return fmt.Errorf("页面高度无效: %g", c.Page.Height)
	}
	usable := c.Page.UsableWidth()
	if usable <= 0 {
		return fmt.Errorf("边距过大，可用宽度为 %g", usable)
	}
	if c.Body.Size <= 0 || c.Bold.Size <= 0 {
		return fmt.Errorf("字号必须大于 0")
	}
	if c.InfoRatio < 0 || c.InfoRatio > 1 {
		return fmt.Errorf("info 宽度比例必须位于 [0,1]: %g", c.InfoRatio)
	}
	if c.TotalsRatio < 0 || c.TotalsRatio >= 1 {
		return fmt.Errorf("totals 起点比例必须位于 [0,1): %g", c.TotalsRatio)
	}
	if c.MinRowHeight < 0 {
		return fmt.Errorf("最小行高不能为负: %g", c.MinRowHeight)
	}
	return c.Table.Validate(usable)
}

const defaultLineHeightFactor = 1.2

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
