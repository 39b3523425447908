package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/ByLCY/posslip/model"
)

// monoTypesetter 是测试用的等宽排版后端：每个字符宽 fontSize/2，每行高 lineHeight，
// 按字符数硬切分行。结果只依赖入参，满足确定性要求。
type monoTypesetter struct{}

func (monoTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64) ([]TextLine, error) {
	charW := fontSize / 2
	perLine := int(math.Floor(width/charW + 1e-9))
	if perLine < 1 {
		perLine = 1
	}
	runes := []rune(content)
	n := (len(runes) + perLine - 1) / perLine
	if n == 0 {
		n = 1
	}
	lines := make([]TextLine, n)
	for i := range lines {
		lo := i * perLine
		hi := min(lo+perLine, len(runes))
		seg := ""
		if lo < len(runes) {
			seg = string(runes[lo:hi])
		}
		lines[i] = TextLine{Content: seg, Width: float64(len([]rune(seg))) * charW, Height: lineHeight}
	}
	return lines, nil
}

type failingTypesetter struct{}

func (failingTypesetter) LayoutLines(string, float64, FontResource, float64, float64) ([]TextLine, error) {
	return nil, errors.New("font not loaded")
}

const (
	rowH    = 3.5 // 最小行高，大于单行文本高度 2.5
	lineH   = 2.5
	usableW = 55.0
)

func testConfig() Config {
	return Config{
		Page: PageSpec{Width: 57, Margin: Margin{Top: 1, Right: 1, Bottom: 1, Left: 1}},
		Fonts: map[string]FontResource{
			"Regular": {Name: "Regular", Src: "builtin:gomono"},
			"Bold":    {Name: "Bold", Src: "builtin:gomono-bold", Style: "bold"},
		},
		Body: TextStyle{Font: "Regular", Size: 2, LineHeight: lineH},
		Bold: TextStyle{Font: "Bold", Size: 2, LineHeight: lineH},
		Table: TableLayout{Columns: []ColumnSpec{
			{Name: "item", Header: "Item Description", Field: FieldName, Width: 33, Align: AlignStart},
			{Name: "qty", Header: "Qty", Field: FieldQuantity, Width: 5.5, Align: AlignEnd},
			{Name: "amount", Header: "Amount", Field: FieldAmount, Width: 16.5, Align: AlignEnd},
		}},
		MinRowHeight: rowH,
		Spacing:      Spacing{Top: 2, Section: 5, Rule: 0.5, Totals: 4, TotalRow: 3.5, GrandTotal: 0.5, Footer: 4, Bottom: 2},
		InfoRatio:    0.7,
		TotalsRatio:  0.5,
		LogoWidth:    17,
		LogoHeight:   17,
		QRSize:       17,
		RuleWidth:    0.2,
	}
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, monoTypesetter{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func items(n int) []model.LineItem {
	out := make([]model.LineItem, n)
	for i := range out {
		out[i] = model.NewLineItem(fmt.Sprintf("Item %d", i+1), decimal.NewFromInt(int64(i%5+1)), decimal.NewFromInt(int64(10+i)))
	}
	return out
}

func sampleDoc(t *testing.T, n int) model.Document {
	t.Helper()
	doc, err := model.NewDocument(model.Document{
		Header: model.Header{Logo: true, QRPayload: "ORD-1"},
		Info: model.Section{Title: "Order details:", Fields: []model.Field{
			{Label: "Code", Value: "ORD-1"},
			{Label: "Date", Value: "2024-05-01 10:30"},
			{Label: "Stat", Value: "paid"},
		}},
		Recipient: model.Section{Title: "Bill to:", Fields: []model.Field{
			{Value: "Jane"},
			{Label: "CId", Value: "jane"},
		}},
		Items: items(n),
		Totals: []model.Total{
			{Label: "Subtotal:", Amount: decimal.NewFromInt(100)},
			{Label: "Discount:", Prefix: "(-) ", Amount: decimal.NewFromInt(5)},
			{Label: "Total:", Amount: decimal.NewFromInt(95)},
		},
		Footer: []string{"Thank you for your purchase!", "Visit us again!"},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

var testImages = Images{Logo: []byte{1}, QR: []byte{2}}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func textsByRole(p Page, role Role) []TextBox {
	var out []TextBox
	for _, tb := range p.Texts {
		if tb.Role == role {
			out = append(out, tb)
		}
	}
	return out
}

func itemRows(p Page) []RowBox {
	var out []RowBox
	for _, r := range p.Rows {
		if !r.Header {
			out = append(out, r)
		}
	}
	return out
}

// TestSinglePageTwoPassConsistency 验证测量阶段得到的高度与页脚位置和最终排版一致。
func TestSinglePageTwoPassConsistency(t *testing.T) {
	e := newTestEngine(t, testConfig())
	doc := sampleDoc(t, 3)

	m, err := e.Measure(doc, testImages)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	res, err := e.Layout(doc, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("single-page mode must produce one page, got %d", len(res.Pages))
	}
	page := res.Pages[0]
	if !near(page.Height, m.Height) {
		t.Fatalf("page height %g != measured %g", page.Height, m.Height)
	}
	footer := textsByRole(page, RoleFooter)
	if len(footer) != 2 {
		t.Fatalf("expected 2 footer lines, got %d", len(footer))
	}
	if !near(footer[0].Y, m.FooterY) {
		t.Fatalf("footer drawn at %g, measured %g", footer[0].Y, m.FooterY)
	}
	last := footer[len(footer)-1]
	if want := last.Bottom() + 2 + 1; !near(page.Height, want) {
		t.Fatalf("page height %g, want footer bottom + spacing + margin = %g", page.Height, want)
	}
}

// TestLayoutDeterministic 同一输入排两次，结果逐字段一致。
func TestLayoutDeterministic(t *testing.T) {
	e := newTestEngine(t, testConfig())
	doc := sampleDoc(t, 3)
	a, err := e.Layout(doc, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	b, err := e.Layout(doc, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("layout not deterministic (-first +second):\n%s", diff)
	}
}

// TestSideBySideColumnsMerge 验证订单信息与收件人共享顶部 y，之后取两列较低者再加间距。
func TestSideBySideColumnsMerge(t *testing.T) {
	e := newTestEngine(t, testConfig())
	res, err := e.Layout(sampleDoc(t, 3), testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	page := res.Pages[0]
	info := textsByRole(page, RoleInfo)
	rec := textsByRole(page, RoleRecipient)
	if info[0].Y != rec[0].Y {
		t.Fatalf("columns must share top y: info=%g recipient=%g", info[0].Y, rec[0].Y)
	}
	// 顶部 3 + 图片行 17 = 20；左列 4 行 = 10，右列 3 行 = 7.5；表头 = 30 + 5。
	if !near(info[0].Y, 20) {
		t.Fatalf("info top = %g, want 20", info[0].Y)
	}
	if got := rec[len(rec)-1]; !near(got.Bottom(), 27.5) || got.Align != AlignEnd {
		t.Fatalf("unexpected recipient bottom/align: %+v", got.Box)
	}
	header := page.Rows[0]
	if !header.Header || !near(header.Y, 35) {
		t.Fatalf("table header at %g (header=%v), want 35", header.Y, header.Header)
	}
}

// TestRowHeightsAreAdditive 验证行高之和等于引擎累积的明细高度，且相邻行首尾相接。
func TestRowHeightsAreAdditive(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg)
	doc := sampleDoc(t, 12)
	res, err := e.Layout(doc, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	sum := 0.0
	for i, item := range doc.Items {
		row, _, err := PlanItemRow(e.metrics, Cursor{}, 1, i, item, cfg.Table, cfg.Body, cfg.MinRowHeight)
		if err != nil {
			t.Fatalf("PlanItemRow: %v", err)
		}
		sum += row.Height
	}
	if !near(sum, res.Measurement.RowsHeight) {
		t.Fatalf("Σ rowHeight = %g, engine accumulated %g", sum, res.Measurement.RowsHeight)
	}
	rows := itemRows(res.Pages[0])
	for i := 1; i < len(rows); i++ {
		if !near(rows[i].Y, rows[i-1].Bottom()) {
			t.Fatalf("row %d starts at %g, previous ends at %g", i, rows[i].Y, rows[i-1].Bottom())
		}
	}
}

// TestMinimumRowHeight 文本高度小于最小行高时，行高恰好等于最小行高。
func TestMinimumRowHeight(t *testing.T) {
	cfg := testConfig()
	m := NewMetrics(monoTypesetter{}, cfg.Fonts)
	item := model.NewLineItem("Tea", decimal.NewFromInt(1), decimal.NewFromInt(4))
	row, next, err := PlanItemRow(m, Cursor{Y: 10}, 1, 0, item, cfg.Table, cfg.Body, cfg.MinRowHeight)
	if err != nil {
		t.Fatalf("PlanItemRow: %v", err)
	}
	if row.Height != cfg.MinRowHeight {
		t.Fatalf("row height = %g, want exactly %g", row.Height, cfg.MinRowHeight)
	}
	if next.Y != 10+cfg.MinRowHeight {
		t.Fatalf("cursor = %g, want %g", next.Y, 10+cfg.MinRowHeight)
	}
	if len(row.Cells) != 3 || row.Cells[2].Content != "4.00" || row.Cells[2].Align != AlignEnd {
		t.Fatalf("unexpected cells: %+v", row.Cells)
	}
}

// TestWrappedNameGrowsRow 名称在商品列折成 4 行时，整行高度为 4 行高度，下一行紧接其后。
func TestWrappedNameGrowsRow(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg)
	doc := sampleDoc(t, 3)
	long := strings.Repeat("x", 33*3+5) // 商品列宽 33 字符
	doc.Items[1] = model.NewLineItem(long, decimal.NewFromInt(2), decimal.RequireFromString("3.35"))

	res, err := e.Layout(doc, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	rows := itemRows(res.Pages[0])
	if want := 4 * lineH; !near(rows[1].Height, want) {
		t.Fatalf("wrapped row height = %g, want %g", rows[1].Height, want)
	}
	if !near(rows[2].Y, rows[1].Y+rows[1].Height) {
		t.Fatalf("next row at %g, want %g", rows[2].Y, rows[1].Y+rows[1].Height)
	}
	for _, tb := range textsByRole(res.Pages[0], RoleCell) {
		if tb.Content == "6.70" && !near(tb.Y, rows[1].Y) {
			t.Fatalf("amount cell not aligned to row top: %g vs %g", tb.Y, rows[1].Y)
		}
	}
}

// TestEmptyRecipientFieldContributesNothing 空的联系方式既不占高度，也不影响其他块的位置。
func TestEmptyRecipientFieldContributesNothing(t *testing.T) {
	e := newTestEngine(t, testConfig())
	with := sampleDoc(t, 3)
	raw := with
	raw.Recipient.Fields = append(append([]model.Field{}, with.Recipient.Fields...), model.Field{Label: "Contact", Value: ""})
	withEmpty, err := model.NewDocument(raw)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	a, err := e.Layout(with, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	b, err := e.Layout(withEmpty, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("empty field changed layout (-without +with-empty):\n%s", diff)
	}

	// 未经 NewDocument 的文档：带标签但值为空白的字段同样不绘制。
	unnormalized := with
	unnormalized.Recipient.Fields = append(append([]model.Field{}, with.Recipient.Fields...), model.Field{Label: "Contact", Value: "  "})
	d, err := e.Layout(unnormalized, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(a, d); diff != "" {
		t.Fatalf("blank labeled field changed layout (-without +with-blank):\n%s", diff)
	}

	// 右列比左列短，去掉一行收件人信息不会移动表头。
	shorter := with
	shorter.Recipient.Fields = with.Recipient.Fields[:1]
	c, err := e.Layout(shorter, testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if a.Pages[0].Rows[0].Y != c.Pages[0].Rows[0].Y {
		t.Fatalf("table header moved: %g -> %g", a.Pages[0].Rows[0].Y, c.Pages[0].Rows[0].Y)
	}
}

func TestPlanBlockSkipsBlankFragments(t *testing.T) {
	cfg := testConfig()
	m := NewMetrics(monoTypesetter{}, cfg.Fonts)
	frags := []Fragment{
		{Text: "Bill to:", Style: cfg.Bold},
		{Text: "Jane", Style: cfg.Body},
	}
	base, next, err := PlanBlock(m, "recipient", Cursor{Y: 5}, 1, 20, frags, 1)
	if err != nil {
		t.Fatalf("PlanBlock: %v", err)
	}
	if !near(base.Height, 2*lineH+1) || !near(next.Y, 5+2*lineH+1) {
		t.Fatalf("unexpected block height %g / cursor %g", base.Height, next.Y)
	}

	withBlank := append(append([]Fragment{}, frags...), Fragment{Text: "  ", Style: cfg.Body}, Fragment{Text: "", Style: cfg.Body})
	got, _, err := PlanBlock(m, "recipient", Cursor{Y: 5}, 1, 20, withBlank, 1)
	if err != nil {
		t.Fatalf("PlanBlock: %v", err)
	}
	if got.Height != base.Height || len(got.Texts) != 2 {
		t.Fatalf("blank fragments must add 0 height: %g vs %g", got.Height, base.Height)
	}

	empty, cur, err := PlanBlock(m, "empty", Cursor{Y: 5}, 1, 20, []Fragment{{Text: " "}}, 3)
	if err != nil {
		t.Fatalf("PlanBlock: %v", err)
	}
	if !empty.Empty() || empty.Height != 0 || cur.Y != 5 {
		t.Fatalf("empty block must not advance the cursor: %+v %g", empty, cur.Y)
	}
}

// TestMissingLogoContributesZeroHeight logo 数据缺失时按没有 logo 排版。
func TestMissingLogoContributesZeroHeight(t *testing.T) {
	e := newTestEngine(t, testConfig())
	doc := sampleDoc(t, 2)
	res, err := e.Layout(doc, Images{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	page := res.Pages[0]
	if len(page.Images) != 0 {
		t.Fatalf("no images expected, got %d", len(page.Images))
	}
	if info := textsByRole(page, RoleInfo); !near(info[0].Y, 3) {
		t.Fatalf("info should start at content top, got %g", info[0].Y)
	}
	if len(res.Resources.Images) != 0 {
		t.Fatalf("no image resources expected")
	}
}

func TestQROnlyHeaderRow(t *testing.T) {
	e := newTestEngine(t, testConfig())
	res, err := e.Layout(sampleDoc(t, 1), Images{QR: []byte{9}})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	page := res.Pages[0]
	if len(page.Images) != 1 || page.Images[0].Resource != ImageQR {
		t.Fatalf("expected only the QR image, got %+v", page.Images)
	}
	if qr := page.Images[0]; !near(qr.X+qr.Width, 56) {
		t.Fatalf("QR must be right-aligned to the margin, right edge %g", qr.X+qr.Width)
	}
	if string(res.Resources.Images[ImageQR].Data) != "\x09" {
		t.Fatalf("QR resource not carried into result")
	}
}

func TestTotalsLayout(t *testing.T) {
	e := newTestEngine(t, testConfig())
	res, err := e.Layout(sampleDoc(t, 1), testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	page := res.Pages[0]
	labels := textsByRole(page, RoleTotalLabel)
	values := textsByRole(page, RoleTotalValue)
	if len(labels) != 3 || len(values) != 3 {
		t.Fatalf("expected 3 total rows, got %d/%d", len(labels), len(values))
	}
	if values[1].Content != "(-) 5.00" {
		t.Fatalf("discount value = %q", values[1].Content)
	}
	// 总计行前多留 GrandTotal 间距。
	if !near(labels[2].Y-labels[1].Y, 3.5+0.5) {
		t.Fatalf("grand total gap = %g", labels[2].Y-labels[1].Y)
	}
	// 金额与 amount 列右边缘对齐。
	if v := values[0]; !near(v.X, 1+33+5.5) || !near(v.Width, 16.5) {
		t.Fatalf("value box %+v not in amount column", v.Box)
	}
	if !near(labels[0].X, 1+usableW*0.5) {
		t.Fatalf("label x = %g", labels[0].X)
	}
}

// TestPaginationRepeatsHeader 200 行、每页 10 行：恰好 20 页，每页顶部都有表头，且没有行越过页底。
func TestPaginationRepeatsHeader(t *testing.T) {
	cfg := testConfig()
	cfg.Spacing.Top, cfg.Spacing.Bottom = 0, 0
	// 上边距 1 + 表头 3.5 + 分隔 0.5 + 10 行 × 3.5 + 下边距 1
	cfg.Page.Height = 1 + rowH + 0.5 + 10*rowH + 1
	e := newTestEngine(t, cfg)
	doc, err := model.NewDocument(model.Document{Items: items(200)})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	res, err := e.Layout(doc, Images{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if got, want := len(res.Pages), int(math.Ceil(200.0/10)); got != want {
		t.Fatalf("pages = %d, want %d", got, want)
	}
	if len(res.Plans) != len(res.Pages) {
		t.Fatalf("plans = %d, pages = %d", len(res.Plans), len(res.Pages))
	}
	bottom := cfg.Page.Height - cfg.Page.Margin.Bottom
	next := 0
	for i, page := range res.Pages {
		if len(page.Rows) == 0 || !page.Rows[0].Header || !near(page.Rows[0].Y, 1) {
			t.Fatalf("page %d does not start with a table header: %+v", i, page.Rows)
		}
		if headers := textsByRole(page, RoleTableHeader); len(headers) != 3 {
			t.Fatalf("page %d: header cells = %d", i, len(headers))
		}
		for _, r := range page.Rows {
			if r.Bottom() > bottom+1e-9 {
				t.Fatalf("page %d row %d overflows: %g > %g", i, r.Item, r.Bottom(), bottom)
			}
		}
		plan := res.Plans[i]
		if plan.Index != i || !near(plan.HeaderY, 1) || len(plan.Items) != 10 {
			t.Fatalf("unexpected plan %d: %+v", i, plan)
		}
		for _, idx := range plan.Items {
			if idx != next {
				t.Fatalf("items out of order on page %d: got %d want %d", i, idx, next)
			}
			next++
		}
		if page.Height != cfg.Page.Height {
			t.Fatalf("page %d height = %g", i, page.Height)
		}
	}
}

// TestPaginatedBlocksMoveWhole 放不下的合计块整体移到下一页，不被拆开。
func TestPaginatedBlocksMoveWhole(t *testing.T) {
	cfg := testConfig()
	cfg.Page.Height = 60
	e := newTestEngine(t, cfg)
	res, err := e.Layout(sampleDoc(t, 30), testImages)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	seen := map[int]int{}
	for i, page := range res.Pages {
		labels := textsByRole(page, RoleTotalLabel)
		if len(labels) > 0 {
			seen[i] = len(labels)
		}
		for _, tb := range page.Texts {
			if tb.Bottom() > cfg.Page.Height-cfg.Page.Margin.Bottom-cfg.Spacing.Bottom+1e-9 {
				t.Fatalf("page %d text %q overflows at %g", i, tb.Content, tb.Bottom())
			}
		}
	}
	if len(seen) != 1 {
		t.Fatalf("totals split across pages: %v", seen)
	}
	for i, page := range res.Pages {
		if len(page.Rows) == 0 || !page.Rows[0].Header {
			t.Fatalf("page %d does not start with a table header", i)
		}
	}
	for _, n := range seen {
		if n != 3 {
			t.Fatalf("totals incomplete: %d", n)
		}
	}
}

// TestTrailingBlocksPageRepeatsHeader 明细恰好排满一页时，合计与页脚所在的新页仍以表头开头。
func TestTrailingBlocksPageRepeatsHeader(t *testing.T) {
	cfg := testConfig()
	cfg.Spacing.Top, cfg.Spacing.Bottom = 0, 0
	cfg.Page.Height = 1 + rowH + 0.5 + 10*rowH + 1
	e := newTestEngine(t, cfg)
	doc, err := model.NewDocument(model.Document{
		Items: items(10),
		Totals: []model.Total{
			{Label: "Subtotal:", Amount: decimal.NewFromInt(100)},
			{Label: "Total:", Amount: decimal.NewFromInt(100)},
		},
		Footer: []string{"Thank you!"},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	res, err := e.Layout(doc, Images{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Pages) != 2 || len(res.Plans) != 2 {
		t.Fatalf("expected 2 pages with 2 plans, got pages=%d plans=%d", len(res.Pages), len(res.Plans))
	}
	if len(res.Plans[0].Items) != 10 || len(res.Plans[1].Items) != 0 {
		t.Fatalf("unexpected plans: %+v", res.Plans)
	}
	last := res.Pages[1]
	if len(last.Rows) != 1 || !last.Rows[0].Header || !near(last.Rows[0].Y, 1) {
		t.Fatalf("trailing page should start with the table header: %+v", last.Rows)
	}
	labels := textsByRole(last, RoleTotalLabel)
	if len(labels) != 2 {
		t.Fatalf("totals should move to the trailing page, got %d labels", len(labels))
	}
	if below := last.Rows[0].Bottom() + 0.5; labels[0].Y < below {
		t.Fatalf("totals overlap the repeated header: %g < %g", labels[0].Y, below)
	}
	if len(textsByRole(last, RoleFooter)) != 1 {
		t.Fatalf("footer missing on trailing page")
	}
}

// TestRowOverflowIsFatal 单行比整页还高时报错并指出是哪一行。
func TestRowOverflowIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Spacing.Top, cfg.Spacing.Bottom = 0, 0
	cfg.Page.Height = 20
	e := newTestEngine(t, cfg)
	its := items(3)
	its[2] = model.NewLineItem(strings.Repeat("y", 33*10), decimal.NewFromInt(1), decimal.NewFromInt(1))
	doc, err := model.NewDocument(model.Document{Items: its})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	_, err = e.Layout(doc, Images{})
	var overflow *RowOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected RowOverflowError, got %v", err)
	}
	if overflow.Item != 2 || !near(overflow.Height, 10*lineH) {
		t.Fatalf("unexpected overflow details: %+v", overflow)
	}
}

func TestMeasurementFailureIsFatal(t *testing.T) {
	e, err := NewEngine(testConfig(), failingTypesetter{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	_, err = e.Layout(sampleDoc(t, 1), testImages)
	var me *MeasurementError
	if !errors.As(err, &me) {
		t.Fatalf("expected MeasurementError, got %v", err)
	}

	m := NewMetrics(monoTypesetter{}, nil)
	if _, err := m.Measure("x", testConfig().Body, math.NaN()); !errors.As(err, &me) {
		t.Fatalf("NaN width must be a MeasurementError, got %v", err)
	}
	if _, err := m.Measure("x", testConfig().Body, math.Inf(1)); !errors.As(err, &me) {
		t.Fatalf("Inf width must be a MeasurementError, got %v", err)
	}
}

func TestTableLayoutValidate(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Table.Validate(usableW); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}
	wide := cfg.Table
	wide.Columns = append(append([]ColumnSpec{}, wide.Columns...), ColumnSpec{Name: "extra", Field: FieldUnitPrice, Width: 1, Align: AlignEnd})
	if err := wide.Validate(usableW); err == nil {
		t.Fatalf("columns wider than the page must be rejected")
	}
	centered := TableLayout{Columns: []ColumnSpec{{Name: "item", Field: FieldName, Width: 10, Align: AlignCenter}}}
	if err := centered.Validate(usableW); err == nil {
		t.Fatalf("center alignment inside the table must be rejected")
	}
	if err := (TableLayout{}).Validate(usableW); err == nil {
		t.Fatalf("empty table must be rejected")
	}
	if _, err := NewEngine(Config{}, monoTypesetter{}); err == nil {
		t.Fatalf("zero config must be rejected")
	}
}
