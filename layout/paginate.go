package layout

// placeTable 排列表头与全部明细。分页模式下，放入某行前若 y + 行高 超出可用底部，
// 则关闭当前页、开新页、在页顶重排表头，再放这一行。单行永远不跨页。
// 表格开始后的所有新页（包括只放合计或页脚的页）都以表头开头。
func (c *composer) placeTable(at Cursor) (Cursor, error) {
	items := c.doc.Items
	if len(items) == 0 {
		return at, nil
	}
	cfg := c.cfg
	x := cfg.Page.Margin.Left

	// 表头与首行的高度与位置无关，先在原点试排得到高度。
	_, _, headerEnd, err := c.planTableHeader(Cursor{})
	if err != nil {
		return at, err
	}
	headerHeight := headerEnd.Y
	first, _, err := PlanItemRow(c.m, Cursor{}, x, 0, items[0], cfg.Table, cfg.Body, cfg.MinRowHeight)
	if err != nil {
		return at, err
	}
	if err := c.checkRow(0, first.Height, headerHeight); err != nil {
		return at, err
	}
	start, err := c.ensureSpace("table", at, headerHeight+first.Height)
	if err != nil {
		return at, err
	}

	cur, err := c.openTable(start)
	if err != nil {
		return at, err
	}
	c.tableOpen, c.tableHead = true, headerHeight
	for i, item := range items {
		row, next, err := PlanItemRow(c.m, cur, x, i, item, cfg.Table, cfg.Body, cfg.MinRowHeight)
		if err != nil {
			return at, err
		}
		if !c.fits(cur, row.Height) {
			if err := c.checkRow(i, row.Height, headerHeight); err != nil {
				return at, err
			}
			if cur, err = c.breakPage(); err != nil {
				return at, err
			}
			if row, next, err = PlanItemRow(c.m, cur, x, i, item, cfg.Table, cfg.Body, cfg.MinRowHeight); err != nil {
				return at, err
			}
		}
		c.curr().appendRow(row)
		plan := &c.plans[len(c.plans)-1]
		plan.Items = append(plan.Items, i)
		c.rowsHeight += row.Height
		cur = next
	}
	return cur, nil
}

// checkRow 判断一行在表头之下的整页空间内能否放下。
func (c *composer) checkRow(index int, height, headerHeight float64) error {
	avail := c.contentBottom() - c.contentTop() - headerHeight
	if height > avail+consistencyEpsilon {
		return &RowOverflowError{Item: index, Name: c.doc.Items[index].Name, Height: height, Available: avail}
	}
	return nil
}

// openTable 在 at 处放置表头及其下方分隔线，并开始一个新的页面计划。
func (c *composer) openTable(at Cursor) (Cursor, error) {
	row, rule, cur, err := c.planTableHeader(at)
	if err != nil {
		return at, err
	}
	acc := c.curr()
	acc.appendRow(row)
	acc.lines = append(acc.lines, rule)
	c.plans = append(c.plans, PagePlan{Index: len(c.pages) - 1, HeaderY: at.Y})
	return cur, nil
}

func (c *composer) planTableHeader(at Cursor) (Row, Line, Cursor, error) {
	cfg := c.cfg
	x := cfg.Page.Margin.Left
	row, cur, err := PlanHeaderRow(c.m, at, x, cfg.Table, cfg.Bold, cfg.MinRowHeight)
	if err != nil {
		return Row{}, Line{}, at, err
	}
	rule := Line{X1: x, Y1: cur.Y, X2: x + cfg.Page.UsableWidth(), Y2: cur.Y, Width: cfg.RuleWidth, Color: cfg.RuleColor}
	return row, rule, cur.Advance(cfg.Spacing.Rule), nil
}
