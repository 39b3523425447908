package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/posslip/model"
)

// 图片资源在 ResourceSet.Images 中的键名。
const (
	ImageLogo = "logo"
	ImageQR   = "qr"
)

const consistencyEpsilon = 1e-6

// Images 是排版时已经就绪的图片数据。缺失的图片不绘制，也不占高度。
type Images struct {
	Logo []byte
	QR   []byte
}

// Engine 是参数化的排版引擎：同一套几何函数既用于测量，也用于最终排版。
type Engine struct {
	cfg     Config
	metrics *Metrics
}

// NewEngine 校验配置并创建引擎。
func NewEngine(cfg Config, ts Typesetter) (*Engine, error) {
	if ts == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("排版配置无效: %w", err)
	}
	return &Engine{cfg: cfg, metrics: NewMetrics(ts, cfg.Fonts)}, nil
}

// Measure 在无限高的页面上完整排一遍，返回所需高度。不产生任何输出。
func (e *Engine) Measure(doc model.Document, imgs Images) (Measurement, error) {
	c := e.newComposer(doc, imgs, 0)
	if err := c.compose(); err != nil {
		return Measurement{}, err
	}
	return c.measurement(), nil
}

// Layout 计算所有元素的最终位置。
// 单页模式先 Measure 得到高度，再用同样的函数在该高度的页面上重新排版；
// 分页模式在固定页高上逐行累积并在放不下时换页、重复表头。
func (e *Engine) Layout(doc model.Document, imgs Images) (*Result, error) {
	if e.cfg.Page.Paginated() {
		c := e.newComposer(doc, imgs, e.cfg.Page.Height)
		if err := c.compose(); err != nil {
			return nil, err
		}
		return c.result(e.cfg.Page.Height), nil
	}

	m, err := e.Measure(doc, imgs)
	if err != nil {
		return nil, err
	}
	c := e.newComposer(doc, imgs, 0)
	if err := c.compose(); err != nil {
		return nil, err
	}
	if math.Abs(c.end-m.Height) > consistencyEpsilon {
		return nil, fmt.Errorf("测量高度 %g 与排版高度 %g 不一致，排版后端不满足确定性", m.Height, c.end)
	}
	return c.result(m.Height), nil
}

func (e *Engine) newComposer(doc model.Document, imgs Images, bound float64) *composer {
	return &composer{cfg: e.cfg, m: e.metrics, doc: doc, imgs: imgs, bound: bound}
}

// unit 是一个整体放置、不可拆分的内容单元。
type unit struct {
	texts  []TextBox
	images []ImageBox
	lines  []Line
}

type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	lines  []Line
	rows   []RowBox
}

func (p *pageAccumulator) appendUnit(u unit) {
	p.texts = append(p.texts, u.texts...)
	p.images = append(p.images, u.images...)
	p.lines = append(p.lines, u.lines...)
}

func (p *pageAccumulator) appendRow(r Row) {
	p.texts = append(p.texts, r.Cells...)
	p.rows = append(p.rows, RowBox{Box: r.Box, Item: r.Item, Header: r.Header})
}

// composer 保存一次排版调用的页面累积状态，调用结束即丢弃。
type composer struct {
	cfg   Config
	m     *Metrics
	doc   model.Document
	imgs  Images
	bound float64 // 分页页高；0 表示不分页

	pages      []*pageAccumulator
	plans      []PagePlan
	tableOpen  bool    // 表格开始后，之后的每一页都以表头开头
	tableHead  float64 // 表头行加分隔间距的高度
	rowsHeight float64
	footerY    float64
	end        float64
}

func (c *composer) compose() error {
	cur := c.newPage()
	var err error
	if cur, err = c.place("header", cur, c.planHeader); err != nil {
		return err
	}
	if cur, err = c.place("parties", cur, c.planParties); err != nil {
		return err
	}
	if cur, err = c.placeTable(cur); err != nil {
		return err
	}
	if cur, err = c.place("totals", cur, c.planTotals); err != nil {
		return err
	}
	if cur, err = c.place("footer", cur, c.planFooter); err != nil {
		return err
	}
	c.end = cur.Y + c.cfg.Spacing.Bottom + c.cfg.Page.Margin.Bottom
	return nil
}

func (c *composer) contentTop() float64 { return c.cfg.Page.Margin.Top + c.cfg.Spacing.Top }

func (c *composer) contentBottom() float64 {
	if c.bound <= 0 {
		return math.Inf(1)
	}
	return c.bound - c.cfg.Page.Margin.Bottom - c.cfg.Spacing.Bottom
}

func (c *composer) newPage() Cursor {
	c.pages = append(c.pages, &pageAccumulator{})
	return Cursor{Y: c.contentTop()}
}

func (c *composer) curr() *pageAccumulator { return c.pages[len(c.pages)-1] }

func (c *composer) fits(at Cursor, height float64) bool {
	return at.Y+height <= c.contentBottom()+consistencyEpsilon
}

// ensureSpace 在当前页放不下 height 时换页；即使是新页也放不下则报错。
func (c *composer) ensureSpace(name string, at Cursor, height float64) (Cursor, error) {
	if c.fits(at, height) {
		return at, nil
	}
	top := c.contentTop()
	if c.tableOpen {
		top += c.tableHead
	}
	if avail := c.contentBottom() - top; height > avail+consistencyEpsilon {
		return at, &BlockOverflowError{Block: name, Height: height, Available: avail}
	}
	return c.breakPage()
}

// breakPage 开新页；表格已经开始时在页顶重排表头，合计与页脚所在的页同样以表头开头。
func (c *composer) breakPage() (Cursor, error) {
	cur := c.newPage()
	if !c.tableOpen {
		return cur, nil
	}
	return c.openTable(cur)
}

// place 先在 at 处试排，放不下时换页后按新位置重排一次（同样的输入得到同样的高度）。
func (c *composer) place(name string, at Cursor, plan func(Cursor) (unit, Cursor, error)) (Cursor, error) {
	u, next, err := plan(at)
	if err != nil {
		return at, err
	}
	height := next.Y - at.Y
	if height <= 0 {
		return at, nil
	}
	start, err := c.ensureSpace(name, at, height)
	if err != nil {
		return at, err
	}
	if start != at {
		if u, next, err = plan(start); err != nil {
			return at, err
		}
	}
	c.curr().appendUnit(u)
	return next, nil
}

func (c *composer) planHeader(at Cursor) (unit, Cursor, error) {
	var u unit
	cfg, pg := c.cfg, c.cfg.Page
	rowHeight := 0.0
	if c.doc.Header.Logo && len(c.imgs.Logo) > 0 && cfg.LogoWidth > 0 && cfg.LogoHeight > 0 {
		u.images = append(u.images, ImageBox{
			Box:      Box{X: pg.Margin.Left, Y: at.Y, Width: cfg.LogoWidth, Height: cfg.LogoHeight},
			Resource: ImageLogo,
		})
		rowHeight = cfg.LogoHeight
	}
	if len(c.imgs.QR) > 0 && cfg.QRSize > 0 {
		u.images = append(u.images, ImageBox{
			Box:      Box{X: pg.Width - pg.Margin.Right - cfg.QRSize, Y: at.Y, Width: cfg.QRSize, Height: cfg.QRSize},
			Resource: ImageQR,
		})
		rowHeight = math.Max(rowHeight, cfg.QRSize)
	}
	cur := at
	if rowHeight > 0 {
		cur = cur.Advance(rowHeight + cfg.Spacing.Header)
	}

	frags := []Fragment{{Role: RoleTitle, Text: c.doc.Header.Title, Style: cfg.Bold, Align: AlignCenter}}
	for _, line := range c.doc.Header.ReturnAddress {
		frags = append(frags, Fragment{Role: RoleReturnAddress, Text: line, Style: cfg.Body, Align: AlignCenter})
	}
	block, cur, err := PlanBlock(c.m, "header", cur, pg.Margin.Left, pg.UsableWidth(), frags, cfg.Spacing.Header)
	if err != nil {
		return unit{}, at, err
	}
	u.texts = block.Texts
	return u, cur, nil
}

// planParties 并排排列订单信息（左）与收件人（右）：两列共享顶部 y，各自推进，
// 之后的 y = max(左列底部, 右列底部) + Section 间距。
func (c *composer) planParties(at Cursor) (unit, Cursor, error) {
	cfg, pg := c.cfg, c.cfg.Page
	usable := pg.UsableWidth()
	x := pg.Margin.Left

	var (
		left, right Block
		cur         Cursor
		err         error
	)
	if cfg.InfoRatio > 0 && cfg.InfoRatio < 1 {
		lw := usable * cfg.InfoRatio
		var lc, rc Cursor
		if left, lc, err = PlanBlock(c.m, "info", at, x, lw, c.sectionFragments(RoleInfo, c.doc.Info, AlignStart), 0); err != nil {
			return unit{}, at, err
		}
		if right, rc, err = PlanBlock(c.m, "recipient", at, x+lw, usable-lw, c.sectionFragments(RoleRecipient, c.doc.Recipient, AlignEnd), 0); err != nil {
			return unit{}, at, err
		}
		cur = lc.Merge(rc)
	} else {
		var lc Cursor
		if left, lc, err = PlanBlock(c.m, "info", at, x, usable, c.sectionFragments(RoleInfo, c.doc.Info, AlignStart), 0); err != nil {
			return unit{}, at, err
		}
		if right, cur, err = PlanBlock(c.m, "recipient", lc, x, usable, c.sectionFragments(RoleRecipient, c.doc.Recipient, AlignStart), 0); err != nil {
			return unit{}, at, err
		}
	}
	if left.Empty() && right.Empty() {
		return unit{}, at, nil
	}
	u := unit{texts: append(append([]TextBox{}, left.Texts...), right.Texts...)}
	return u, cur.Advance(cfg.Spacing.Section), nil
}

func (c *composer) sectionFragments(role Role, s model.Section, align Align) []Fragment {
	frags := []Fragment{{Role: role, Text: s.Title, Style: c.cfg.Bold, Align: align}}
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		frags = append(frags, Fragment{Role: role, Text: f.Text(), Style: c.cfg.Body, Align: align})
	}
	return frags
}

func (c *composer) planTotals(at Cursor) (unit, Cursor, error) {
	totals := c.doc.Totals
	if len(totals) == 0 {
		return unit{}, at, nil
	}
	cfg, pg := c.cfg, c.cfg.Page
	usable := pg.UsableWidth()
	x := pg.Margin.Left

	valueCol, valueOffset, ok := cfg.Table.AmountColumn()
	if !ok {
		offsets := cfg.Table.Offsets()
		valueCol = cfg.Table.Columns[len(cfg.Table.Columns)-1]
		valueOffset = offsets[len(offsets)-1]
	}
	valueX := x + valueOffset
	labelX := x + usable*cfg.TotalsRatio
	labelWidth := valueCol.Width

	ruleY := at.Y + cfg.Spacing.Totals/2
	u := unit{lines: []Line{{X1: labelX, Y1: ruleY, X2: x + usable, Y2: ruleY, Width: cfg.RuleWidth, Color: cfg.RuleColor}}}
	cur := at.Advance(cfg.Spacing.Totals)
	for i, t := range totals {
		if i == len(totals)-1 && len(totals) > 1 {
			cur = cur.Advance(cfg.Spacing.GrandTotal)
		}
		lm, err := c.m.Measure(t.Label, cfg.Bold, labelWidth)
		if err != nil {
			return unit{}, at, err
		}
		value := t.ValueText()
		vm, err := c.m.Measure(value, cfg.Body, valueCol.Width)
		if err != nil {
			return unit{}, at, err
		}
		u.texts = append(u.texts,
			textBox(RoleTotalLabel, t.Label, cfg.Bold, labelX, cur.Y, labelWidth, AlignStart, lm),
			textBox(RoleTotalValue, value, cfg.Body, valueX, cur.Y, valueCol.Width, AlignEnd, vm),
		)
		cur = cur.Advance(math.Max(cfg.Spacing.TotalRow, math.Max(lm.Height, vm.Height)))
	}
	return u, cur, nil
}

func (c *composer) planFooter(at Cursor) (unit, Cursor, error) {
	if len(c.doc.Footer) == 0 {
		c.footerY = at.Y
		return unit{}, at, nil
	}
	cfg, pg := c.cfg, c.cfg.Page
	usable := pg.UsableWidth()
	x := pg.Margin.Left

	ruleY := at.Y + cfg.Spacing.Footer/2
	start := at.Advance(cfg.Spacing.Footer)
	frags := make([]Fragment, 0, len(c.doc.Footer))
	for _, line := range c.doc.Footer {
		frags = append(frags, Fragment{Role: RoleFooter, Text: line, Style: cfg.Body, Align: AlignCenter})
	}
	block, cur, err := PlanBlock(c.m, "footer", start, x, usable, frags, 0)
	if err != nil {
		return unit{}, at, err
	}
	c.footerY = start.Y
	return unit{
		texts: block.Texts,
		lines: []Line{{X1: x, Y1: ruleY, X2: x + usable, Y2: ruleY, Width: cfg.RuleWidth, Color: cfg.RuleColor}},
	}, cur, nil
}

func (c *composer) measurement() Measurement {
	return Measurement{Height: c.end, FooterY: c.footerY, RowsHeight: c.rowsHeight}
}

func (c *composer) result(pageHeight float64) *Result {
	pg := c.cfg.Page
	pages := make([]Page, len(c.pages))
	for i, acc := range c.pages {
		pages[i] = Page{
			Width:  pg.Width,
			Height: pageHeight,
			Margin: pg.Margin,
			Texts:  acc.texts,
			Images: acc.images,
			Lines:  acc.lines,
			Rows:   acc.rows,
		}
	}
	images := map[string]ImageResource{}
	for _, p := range c.pages {
		for _, img := range p.images {
			data := c.imgs.Logo
			if img.Resource == ImageQR {
				data = c.imgs.QR
			}
			images[img.Resource] = ImageResource{Name: img.Resource, Data: data, Size: len(data)}
		}
	}
	meta := c.cfg.Meta
	if c.doc.Title != "" {
		meta.Title = c.doc.Title
	}
	return &Result{
		Pages:       pages,
		Plans:       c.plans,
		Measurement: c.measurement(),
		Resources:   ResourceSet{Fonts: c.cfg.Fonts, Images: images},
		Meta:        meta,
	}
}
