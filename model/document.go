package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Document 是一张小票的全部内容。由 NewDocument 构造后不再修改，只属于创建它的那次渲染。
type Document struct {
	Title     string     `json:"title"`
	Header    Header     `json:"header"`
	Info      Section    `json:"info"`
	Recipient Section    `json:"recipient"`
	Items     []LineItem `json:"items"`
	Totals    []Total    `json:"totals"`
	Footer    []string   `json:"footer"`
}

// Header 描述页眉：logo、二维码、可选标题与退货地址。
type Header struct {
	Logo          bool     `json:"logo"`
	QRPayload     string   `json:"qrPayload,omitempty"`
	Title         string   `json:"title,omitempty"`
	ReturnAddress []string `json:"returnAddress,omitempty"`
}

// Section 是带标题的一组键值行，用于订单信息与收件人。
type Section struct {
	Title  string  `json:"title,omitempty"`
	Fields []Field `json:"fields"`
}

// Empty 报告该区块是否没有任何可显示内容。
func (s Section) Empty() bool { return blank(s.Title) && len(s.Fields) == 0 }

// Field 是一行 "Label: Value"，Label 为空时只显示 Value。
type Field struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// Text 返回该行的显示文本。
func (f Field) Text() string {
	if f.Label == "" {
		return f.Value
	}
	return f.Label + ": " + f.Value
}

// LineItem 是一条商品明细。Amount 恒等于 Round2(Quantity × UnitPrice)。
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewLineItem 构造明细并计算行金额。
func NewLineItem(name string, quantity, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    LineAmount(quantity, unitPrice),
	}
}

// QuantityText 返回数量的显示文本。
func (li LineItem) QuantityText() string { return li.Quantity.String() }

// UnitPriceText 返回单价的显示文本。
func (li LineItem) UnitPriceText() string { return FormatMoney(li.UnitPrice) }

// AmountText 返回行金额的显示文本。
func (li LineItem) AmountText() string { return li.Amount.StringFixed(2) }

// Total 是合计区的一行，Prefix 用于 "(-) " 之类的符号。
type Total struct {
	Label  string          `json:"label"`
	Prefix string          `json:"prefix,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// ValueText 返回金额的显示文本。
func (t Total) ValueText() string { return t.Prefix + FormatMoney(t.Amount) }

// NewDocument 规范化并校验文档：所有文本转为 NFC，空白的可选字段被整行剔除。
func NewDocument(d Document) (Document, error) {
	out := Document{
		Title: nfc(d.Title),
		Header: Header{
			Logo:          d.Header.Logo,
			QRPayload:     d.Header.QRPayload,
			Title:         nfc(d.Header.Title),
			ReturnAddress: nonBlank(d.Header.ReturnAddress),
		},
		Info:      normalizeSection(d.Info),
		Recipient: normalizeSection(d.Recipient),
		Footer:    nonBlank(d.Footer),
	}
	if blank(out.Header.Title) {
		out.Header.Title = ""
	}

	out.Items = make([]LineItem, 0, len(d.Items))
	for i, item := range d.Items {
		want := LineAmount(item.Quantity, item.UnitPrice)
		if !item.Amount.Equal(want) {
			return Document{}, fmt.Errorf("第 %d 行明细金额 %s 与 数量×单价 %s 不一致", i+1, item.Amount, want)
		}
		item.Name = nfc(item.Name)
		out.Items = append(out.Items, item)
	}

	for _, t := range d.Totals {
		if blank(t.Label) {
			return Document{}, fmt.Errorf("合计行缺少标签")
		}
		out.Totals = append(out.Totals, Total{Label: nfc(t.Label), Prefix: nfc(t.Prefix), Amount: Round2(t.Amount)})
	}
	return out, nil
}

// GrandTotal 返回最后一个合计行（总计）。
func (d Document) GrandTotal() (Total, bool) {
	if len(d.Totals) == 0 {
		return Total{}, false
	}
	return d.Totals[len(d.Totals)-1], true
}

// Subtotal 返回全部明细金额之和。
func (d Document) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

func normalizeSection(s Section) Section {
	out := Section{Title: nfc(s.Title)}
	if blank(out.Title) {
		out.Title = ""
	}
	for _, f := range s.Fields {
		if blank(f.Value) {
			continue
		}
		out.Fields = append(out.Fields, Field{Label: nfc(f.Label), Value: nfc(f.Value)})
	}
	return out
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if blank(l) {
			continue
		}
		out = append(out, nfc(l))
	}
	return out
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func nfc(s string) string { return norm.NFC.String(s) }
