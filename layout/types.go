package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义布局结果与资源描述，供排版计算、渲染与调试 JSON 共用。所有长度单位均为 mm。

// Result 保存一次排版的全部输出：页面元素、分页计划与测量值。
type Result struct {
	Pages       []Page       `json:"pages"`
	Plans       []PagePlan   `json:"plans,omitempty"`
	Measurement Measurement  `json:"measurement"`
	Resources   ResourceSet  `json:"resources"`
	Meta        DocumentMeta `json:"meta"`
}

// Measurement 是测量阶段的结论。单页模式下 Height 即最终页面高度。
type Measurement struct {
	Height     float64 `json:"height"`
	FooterY    float64 `json:"footerY"`
	RowsHeight float64 `json:"rowsHeight"`
}

// PagePlan 描述分页模式下一页放置的明细行，以及该页表头所在的 y 坐标。
type PagePlan struct {
	Index   int     `json:"index"`
	HeaderY float64 `json:"headerY"`
	Items   []int   `json:"items"`
}

// ResourceSet 记录渲染需要的字体与图片。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Images map[string]ImageResource `json:"images"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:<name>。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"` // 渲染器使用的 Family 名称
}

// ImageResource 保存已经读入内存的图片数据（PNG/JPEG/GIF）。
type ImageResource struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
	Size int    `json:"size"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseColor 解析 #rgb、#rrggbb 或 #rrggbbaa（忽略透明度）。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		rgb[i] = int(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin Margin     `json:"margin"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Rows   []RowBox   `json:"rows,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Box 是排版输出的矩形区域，创建后不再修改。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom 返回矩形下边缘的 y 坐标。
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Align 是文本在所属矩形内的水平对齐方式。
type Align string

const (
	AlignStart  Align = "start"
	AlignEnd    Align = "end"
	AlignCenter Align = "center"
)

// ParseAlign 解析模板中的对齐写法，left/right 作为 start/end 的别名。
func ParseAlign(v string) (Align, bool) {
	switch v {
	case "", "start", "left":
		return AlignStart, true
	case "end", "right":
		return AlignEnd, true
	case "center":
		return AlignCenter, true
	}
	return "", false
}

// Role 标识文本所属的内容块，便于调试与测试定位。
type Role string

const (
	RoleTitle         Role = "title"
	RoleReturnAddress Role = "return-address"
	RoleInfo          Role = "info"
	RoleRecipient     Role = "recipient"
	RoleTableHeader   Role = "table-header"
	RoleCell          Role = "cell"
	RoleTotalLabel    Role = "total-label"
	RoleTotalValue    Role = "total-value"
	RoleFooter        Role = "footer"
)

// TextBox 表示一个已经排好坐标的文本块，Lines 为测量阶段得到的折行结果。
type TextBox struct {
	Box
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Align      Align      `json:"align,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// ImageBox 用于描述图片位置与尺寸，Resource 指向 ResourceSet.Images 的键。
type ImageBox struct {
	Box
	Resource string `json:"resource"`
}

// RowBox 记录表格一行（表头或明细）占用的区域。Item 为明细下标，表头为 -1。
type RowBox struct {
	Box
	Item   int  `json:"item"`
	Header bool `json:"header"`
}

// Line 表示一条分隔线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
