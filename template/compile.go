package template

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ByLCY/posslip/dsl"
	"github.com/ByLCY/posslip/fonts"
	"github.com/ByLCY/posslip/layout"
)

// 未在模板中声明时使用的缺省值，与 57mm 热敏小票一致。
const (
	defaultFontSizePt = 6.0
	defaultRowPt      = 10.0
	defaultImagePt    = 50.0
	defaultRulePt     = 1.0
	defaultInfoRatio  = 0.7
	defaultTotalsAt   = 0.5
	defaultMarginMM   = 1.0
)

// Compile 将语法树编译为模板。只使用第一个 page 段。
func Compile(doc *dsl.Document) (*Template, error) {
	if doc == nil {
		return nil, fmt.Errorf("模板为空")
	}
	t := &Template{Name: doc.Name, Version: doc.Version}
	cfg := &t.config
	cfg.Fonts = map[string]layout.FontResource{}
	cfg.Meta = layout.DocumentMeta{Creator: "posslip"}
	cfg.InfoRatio = defaultInfoRatio
	cfg.TotalsRatio = defaultTotalsAt
	cfg.MinRowHeight = defaultRowPt * layout.PtToMm
	cfg.RuleWidth = defaultRulePt * layout.PtToMm

	styles := map[string]*dsl.Command{}
	var page *dsl.PageSection
	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			t.compileMeta(section.Meta.Block)
		case section.Resources != nil:
			block := section.Resources.Block
			for _, cmd := range block.Commands("font") {
				font, err := compileFont(cmd)
				if err != nil {
					return nil, err
				}
				cfg.Fonts[font.Name] = font
			}
			for _, cmd := range block.Commands("style") {
				styles[cmd.Arg(0)] = cmd
			}
		case section.Page != nil:
			if page == nil {
				page = section.Page
			}
		}
	}
	if page == nil {
		return nil, fmt.Errorf("模板缺少 page 段")
	}
	if len(cfg.Fonts) == 0 {
		cfg.Fonts["Regular"] = layout.FontResource{Name: "Regular", Family: "Regular", Src: fonts.Prefix + fonts.Mono}
		cfg.Fonts["Bold"] = layout.FontResource{Name: "Bold", Family: "Regular", Src: fonts.Prefix + fonts.MonoBold, Style: "bold"}
	}

	var err error
	if cfg.Body, err = compileStyle(styles["body"], cfg.Fonts, false); err != nil {
		return nil, err
	}
	if cfg.Bold, err = compileStyle(styles["bold"], cfg.Fonts, true); err != nil {
		return nil, err
	}
	if cfg.Page, err = compilePageSpec(page.Params); err != nil {
		return nil, err
	}
	if err := t.compilePage(page.Block); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("模板 %s: %w", t.Name, err)
	}
	return t, nil
}

func (t *Template) compileMeta(block *dsl.Block) {
	meta := &t.config.Meta
	for key, val := range block.Assignments() {
		switch key {
		case "title":
			t.titleText = val.Text()
		case "author":
			meta.Author = val.Text()
		case "subject":
			meta.Subject = val.Text()
		case "creator":
			meta.Creator = val.Text()
		case "keywords":
			meta.Keywords = val.Strings()
		}
	}
}

// compileFont 解析 `font Name { src: "..." style: bold }`。
func compileFont(cmd *dsl.Command) (layout.FontResource, error) {
	name := cmd.Arg(0)
	if name == "" {
		return layout.FontResource{}, fmt.Errorf("%s: font 需要名称", cmd.Pos)
	}
	font := layout.FontResource{Name: name, Family: name}
	props := cmd.Block.Assignments()
	font.Src = props["src"].Text()
	font.Style = props["style"].Text()
	if family := props["family"].Text(); family != "" {
		font.Family = family
	}
	if font.Src == "" {
		return layout.FontResource{}, fmt.Errorf("%s: font %s 缺少 src", cmd.Pos, name)
	}
	return font, nil
}

// compileStyle 解析 `style body { font: Regular size: 6pt line-height: 1.2x color: #000 }`。
// 未声明的样式回退到第一个匹配粗细的字体与缺省字号。
func compileStyle(cmd *dsl.Command, fonts map[string]layout.FontResource, bold bool) (layout.TextStyle, error) {
	style := layout.TextStyle{Font: pickFont(fonts, bold), Size: defaultFontSizePt * layout.PtToMm}
	lh := layout.LineHeightSpec{}
	if cmd != nil {
		props := cmd.Block.Assignments()
		if v := props["font"].Text(); v != "" {
			if _, ok := fonts[v]; !ok {
				return style, fmt.Errorf("%s: 样式 %s 引用了未定义的字体 %s", cmd.Pos, cmd.Arg(0), v)
			}
			style.Font = v
		}
		if v := props["size"].Text(); v != "" {
			size, ok := layout.ParseLength(v)
			if !ok || size.Unit == layout.UnitPercent || size.Value <= 0 {
				return style, fmt.Errorf("%s: 字号 %q 无效", cmd.Pos, v)
			}
			style.Size = size.ToMM()
		}
		if v := props["line-height"].Text(); v != "" {
			spec, ok := layout.ParseLineHeight(v)
			if !ok {
				return style, fmt.Errorf("%s: 行高 %q 无效", cmd.Pos, v)
			}
			lh = spec
		}
		if v := props["color"].Text(); v != "" {
			c, err := layout.ParseColor(v)
			if err != nil {
				return style, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			style.Color = c
		}
	}
	style.LineHeight = lh.Resolve(style.Size)
	return style, nil
}

func pickFont(fonts map[string]layout.FontResource, bold bool) string {
	var fallback string
	for _, name := range sortedKeys(fonts) {
		isBold := strings.EqualFold(fonts[name].Style, "bold")
		if isBold == bold {
			return name
		}
		if fallback == "" {
			fallback = name
		}
	}
	return fallback
}

// compilePageSpec 解析 `page <width> <height|auto> margin <1-4 个长度>`。
func compilePageSpec(params []*dsl.Lexeme) (layout.PageSpec, error) {
	spec := layout.PageSpec{Margin: layout.Margin{Top: defaultMarginMM, Right: defaultMarginMM, Bottom: defaultMarginMM, Left: defaultMarginMM}}
	if len(params) == 0 {
		return spec, fmt.Errorf("page 需要宽度")
	}
	width, ok := absoluteLength(params[0].Value)
	if !ok || width <= 0 {
		return spec, fmt.Errorf("%s: 页面宽度 %q 无效", params[0].Pos, params[0].Value)
	}
	spec.Width = width
	rest := params[1:]
	if len(rest) > 0 && rest[0].Value != "margin" {
		if rest[0].Value != "auto" {
			h, ok := absoluteLength(rest[0].Value)
			if !ok || h < 0 {
				return spec, fmt.Errorf("%s: 页面高度 %q 无效", rest[0].Pos, rest[0].Value)
			}
			spec.Height = h
		}
		rest = rest[1:]
	}
	for i := 0; i < len(rest); i++ {
		if rest[i].Value != "margin" {
			return spec, fmt.Errorf("%s: 未知的 page 参数 %q", rest[i].Pos, rest[i].Value)
		}
		var vals []float64
		for j := i + 1; j < len(rest) && len(vals) < 4; j++ {
			v, ok := absoluteLength(rest[j].Value)
			if !ok {
				break
			}
			vals = append(vals, v)
		}
		i += len(vals)
		// 与 CSS 相同：1 个值四边相同；2 个值为上下、左右；3 个值为上、左右、下；4 个值为上右下左。
		switch len(vals) {
		case 0:
			return spec, fmt.Errorf("%s: margin 缺少长度", rest[i].Pos)
		case 1:
			spec.Margin = layout.Margin{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}
		case 2:
			spec.Margin = layout.Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			spec.Margin = layout.Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			spec.Margin = layout.Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return spec, nil
}

func (t *Template) compilePage(block *dsl.Block) error {
	cfg := &t.config
	usable := cfg.Page.UsableWidth()
	if usable <= 0 {
		return fmt.Errorf("边距过大，可用宽度为 %g", usable)
	}

	if v := block.Assignments()["rule-width"].Text(); v != "" {
		w, ok := absoluteLength(v)
		if !ok {
			return fmt.Errorf("rule-width %q 无效", v)
		}
		cfg.RuleWidth = w
	}
	if v := block.Assignments()["rule-color"].Text(); v != "" {
		c, err := layout.ParseColor(v)
		if err != nil {
			return fmt.Errorf("rule-color: %w", err)
		}
		cfg.RuleColor = c
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		var err error
		switch cmd.Name {
		case "spacing":
			err = t.compileSpacing(cmd)
		case "header":
			err = t.compileHeader(cmd)
		case "info":
			t.info, err = t.compileSection(cmd, usable, true)
		case "recipient":
			t.recipient, err = t.compileSection(cmd, usable, false)
		case "items":
			err = t.compileItems(cmd, usable)
		case "totals":
			err = t.compileTotals(cmd, usable)
		case "footer":
			t.footer = cmd.Block.Texts()
		default:
			err = fmt.Errorf("%s: 未知的 page 指令 %s", cmd.Pos, cmd.Name)
		}
		if err != nil {
			return err
		}
	}
	if len(cfg.Table.Columns) == 0 {
		return fmt.Errorf("模板缺少 items 段或列定义")
	}
	return nil
}

func (t *Template) compileSpacing(cmd *dsl.Command) error {
	sp := &t.config.Spacing
	targets := map[string]*float64{
		"top":         &sp.Top,
		"header":      &sp.Header,
		"section":     &sp.Section,
		"rule":        &sp.Rule,
		"totals":      &sp.Totals,
		"total-row":   &sp.TotalRow,
		"grand-total": &sp.GrandTotal,
		"footer":      &sp.Footer,
		"bottom":      &sp.Bottom,
	}
	for key, val := range cmd.Block.Assignments() {
		dst, ok := targets[key]
		if !ok {
			return fmt.Errorf("%s: 未知的间距 %s", cmd.Pos, key)
		}
		v, ok := absoluteLength(val.Text())
		if !ok || v < 0 {
			return fmt.Errorf("%s: 间距 %s 的值 %q 无效", cmd.Pos, key, val.Text())
		}
		*dst = v
	}
	return nil
}

// compileHeader 解析页眉：
//
//	header {
//	  logo "logo.png" width 50pt height 50pt
//	  qr "${QRCode}" size 50pt
//	  title: "..."
//	  address: ["...", "..."]
//	}
func (t *Template) compileHeader(cmd *dsl.Command) error {
	cfg := &t.config
	img := defaultImagePt * layout.PtToMm
	for _, logo := range cmd.Block.Commands("logo") {
		t.header.logo = logo.Arg(0)
		if t.header.logo == "" {
			return fmt.Errorf("%s: logo 需要资源路径", logo.Pos)
		}
		opts := logo.Options(1)
		var err error
		if cfg.LogoWidth, err = optionLength(opts, "width", img); err != nil {
			return fmt.Errorf("%s: %w", logo.Pos, err)
		}
		if cfg.LogoHeight, err = optionLength(opts, "height", cfg.LogoWidth); err != nil {
			return fmt.Errorf("%s: %w", logo.Pos, err)
		}
	}
	for _, qr := range cmd.Block.Commands("qr") {
		t.header.qr = qr.Arg(0)
		if t.header.qr == "" {
			return fmt.Errorf("%s: qr 需要内容", qr.Pos)
		}
		var err error
		if cfg.QRSize, err = optionLength(qr.Options(1), "size", img); err != nil {
			return fmt.Errorf("%s: %w", qr.Pos, err)
		}
	}
	props := cmd.Block.Assignments()
	t.header.title = props["title"].Text()
	t.header.address = props["address"].Strings()
	return nil
}

// compileSection 解析 info/recipient。info 上的 width 决定左右两栏的比例，0 或 100% 表示上下排列。
func (t *Template) compileSection(cmd *dsl.Command, usable float64, primary bool) (sectionSpec, error) {
	if primary {
		if v, ok := cmd.Options(0)["width"]; ok {
			w, ok := layout.ParseLength(v)
			if !ok {
				return sectionSpec{}, fmt.Errorf("%s: info 宽度 %q 无效", cmd.Pos, v)
			}
			t.config.InfoRatio = w.Resolve(usable) / usable
		}
	}
	spec := sectionSpec{title: cmd.Block.Assignments()["title"].Text()}
	if cmd.Block == nil {
		return spec, nil
	}
	for _, stmt := range cmd.Block.Statements {
		c := stmt.Command
		if c == nil {
			continue
		}
		switch c.Name {
		case "field":
			if len(c.Args) < 2 {
				return sectionSpec{}, fmt.Errorf("%s: field 需要标签与值", c.Pos)
			}
			spec.fields = append(spec.fields, fieldSpec{label: c.Arg(0), value: c.Arg(1)})
		case "line":
			spec.fields = append(spec.fields, fieldSpec{value: c.Arg(0)})
		default:
			return sectionSpec{}, fmt.Errorf("%s: %s 中未知的指令 %s", c.Pos, cmd.Name, c.Name)
		}
	}
	return spec, nil
}

// compileItems 解析明细表：
//
//	items <数组路径> min-row 10pt {
//	  name: "${Product.name}"
//	  quantity: unitQuantity
//	  price: Product.pricing[0].unitPrice
//	  column item 60% { header: "Item Description" }
//	  column qty 10% end { header: "Qty" }
//	}
func (t *Template) compileItems(cmd *dsl.Command, usable float64) error {
	cfg := &t.config
	t.items.path = cmd.Arg(0)
	if t.items.path == "" {
		return fmt.Errorf("%s: items 需要数据路径", cmd.Pos)
	}
	if v, ok := cmd.Options(1)["min-row"]; ok {
		h, ok := absoluteLength(v)
		if !ok || h < 0 {
			return fmt.Errorf("%s: min-row %q 无效", cmd.Pos, v)
		}
		cfg.MinRowHeight = h
	}
	props := cmd.Block.Assignments()
	t.items.name = props["name"].Text()
	t.items.quantity = props["quantity"].Text()
	t.items.price = props["price"].Text()
	if t.items.quantity == "" || t.items.price == "" {
		return fmt.Errorf("%s: items 需要 quantity 与 price 路径", cmd.Pos)
	}

	cfg.Table.Columns = nil
	for _, col := range cmd.Block.Commands("column") {
		spec, err := compileColumn(col, usable)
		if err != nil {
			return err
		}
		cfg.Table.Columns = append(cfg.Table.Columns, spec)
	}
	return nil
}

// compileColumn 解析 `column <name> <width> [start|end] { header: "..." field: amount }`。
func compileColumn(cmd *dsl.Command, usable float64) (layout.ColumnSpec, error) {
	name := cmd.Arg(0)
	w, ok := layout.ParseLength(cmd.Arg(1))
	if name == "" || !ok || w.IsZero() {
		return layout.ColumnSpec{}, fmt.Errorf("%s: column 需要名称与宽度", cmd.Pos)
	}
	spec := layout.ColumnSpec{Name: name, Width: w.Resolve(usable), Align: layout.AlignStart}
	for key := range cmd.Options(2, "start", "end", "left", "right", "center") {
		align, ok := layout.ParseAlign(key)
		if !ok {
			return spec, fmt.Errorf("%s: column %s 未知参数 %s", cmd.Pos, name, key)
		}
		spec.Align = align
	}
	props := cmd.Block.Assignments()
	spec.Header = props["header"].Text()
	fieldName := name
	if v := props["field"].Text(); v != "" {
		fieldName = v
	}
	field, ok := layout.ParseField(fieldName)
	if !ok {
		return spec, fmt.Errorf("%s: column %s 无法确定显示字段 %q", cmd.Pos, name, fieldName)
	}
	spec.Field = field
	return spec, nil
}

// compileTotals 解析合计区：
//
//	totals at 50% {
//	  total "Subtotal:" sum
//	  total "Discount:" discountAmount prefix "(-) "
//	}
func (t *Template) compileTotals(cmd *dsl.Command, usable float64) error {
	if v, ok := cmd.Options(0)["at"]; ok {
		at, ok := layout.ParseLength(v)
		if !ok {
			return fmt.Errorf("%s: totals 起点 %q 无效", cmd.Pos, v)
		}
		t.config.TotalsRatio = at.Resolve(usable) / usable
	}
	t.totals = nil
	for _, total := range cmd.Block.Commands("total") {
		if len(total.Args) < 2 {
			return fmt.Errorf("%s: total 需要标签与数据来源", total.Pos)
		}
		spec := totalSpec{label: total.Arg(0), source: sourceText(total.Args[1:])}
		for i, arg := range total.Args {
			if arg.Value == "prefix" && i+1 < len(total.Args) {
				spec.prefix = total.Args[i+1].Value
			}
		}
		t.totals = append(t.totals, spec)
	}
	return nil
}

// sourceText 拼接数据路径的各个 token（例如 Product . pricing [ 0 ]），遇到 prefix 停止。
func sourceText(args []*dsl.Lexeme) string {
	var b strings.Builder
	for _, arg := range args {
		if arg.Value == "prefix" {
			break
		}
		b.WriteString(arg.Raw)
	}
	return b.String()
}

func optionLength(opts map[string]string, key string, fallback float64) (float64, error) {
	v, ok := opts[key]
	if !ok {
		return fallback, nil
	}
	l, ok := absoluteLength(v)
	if !ok || l <= 0 {
		return 0, fmt.Errorf("%s 的值 %q 无效", key, v)
	}
	return l, nil
}

// absoluteLength 解析不含百分比的长度，返回 mm。
func absoluteLength(v string) (float64, bool) {
	l, ok := layout.ParseLength(v)
	if !ok || l.Unit == layout.UnitPercent {
		return 0, false
	}
	return l.ToMM(), true
}

func sortedKeys(m map[string]layout.FontResource) []string {
	return slices.Sorted(maps.Keys(m))
}
