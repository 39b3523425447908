package template

import (
	"fmt"
	"strings"

	"github.com/ByLCY/posslip/binding"
	"github.com/ByLCY/posslip/model"
)

// Bind 将订单数据绑定为文档。data 通常由 JSON 解码而来，建议开启 UseNumber 以保留金额精度。
// 绑定值缺失或为空的可选行整行省略；二维码内容、明细数量与总计缺失视为错误。
func (t *Template) Bind(data any) (model.Document, error) {
	var d model.Document
	d.Title, _ = binding.Expand(t.titleText, data)

	d.Header.Logo = t.header.logo != ""
	if t.header.qr != "" {
		payload, ok := binding.Expand(t.header.qr, data)
		if !ok {
			return model.Document{}, fmt.Errorf("二维码内容 %s 缺失", t.header.qr)
		}
		d.Header.QRPayload = payload
	}
	d.Header.Title = optional(t.header.title, data)
	for _, line := range t.header.address {
		if v := optional(line, data); v != "" {
			d.Header.ReturnAddress = append(d.Header.ReturnAddress, v)
		}
	}
	d.Info = bindSection(t.info, data)
	d.Recipient = bindSection(t.recipient, data)

	items, err := t.bindItems(data)
	if err != nil {
		return model.Document{}, err
	}
	d.Items = items

	for i, spec := range t.totals {
		total, ok, err := bindTotal(spec, data, items)
		if err != nil {
			return model.Document{}, err
		}
		if !ok {
			if i == len(t.totals)-1 {
				return model.Document{}, fmt.Errorf("总计 %s 缺少数据 %s", spec.label, spec.source)
			}
			continue
		}
		d.Totals = append(d.Totals, total)
	}

	for _, line := range t.footer {
		if v := optional(line, data); v != "" {
			d.Footer = append(d.Footer, v)
		}
	}
	return model.NewDocument(d)
}

func (t *Template) bindItems(data any) ([]model.LineItem, error) {
	list, ok := binding.List(data, t.items.path)
	if !ok {
		return nil, fmt.Errorf("订单数据缺少明细数组 %s", t.items.path)
	}
	out := make([]model.LineItem, 0, len(list))
	for i, raw := range list {
		name, _ := binding.Expand(t.items.name, raw)
		qty, ok, err := binding.LookupDecimal(raw, pathOf(t.items.quantity))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行明细: %w", i+1, err)
		}
		if !ok {
			return nil, fmt.Errorf("第 %d 行明细缺少数量 %s", i+1, t.items.quantity)
		}
		price, _, err := binding.LookupDecimal(raw, pathOf(t.items.price))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行明细: %w", i+1, err)
		}
		out = append(out, model.NewLineItem(strings.TrimSpace(name), qty, price))
	}
	return out, nil
}

func bindTotal(spec totalSpec, data any, items []model.LineItem) (model.Total, bool, error) {
	total := model.Total{Label: spec.label, Prefix: spec.prefix}
	if spec.source == totalSum {
		total.Amount = model.Document{Items: items}.Subtotal()
		return total, true, nil
	}
	amount, ok, err := binding.LookupDecimal(data, pathOf(spec.source))
	if err != nil {
		return model.Total{}, false, fmt.Errorf("合计 %s: %w", spec.label, err)
	}
	total.Amount = amount
	return total, ok, nil
}

func bindSection(spec sectionSpec, data any) model.Section {
	s := model.Section{Title: optional(spec.title, data)}
	for _, f := range spec.fields {
		value, ok := binding.Expand(f.value, data)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		label, _ := binding.Expand(f.label, data)
		s.Fields = append(s.Fields, model.Field{Label: label, Value: value})
	}
	return s
}

// optional 展开一行可选文本，任一占位符缺失时返回空串。
func optional(text string, data any) string {
	v, ok := binding.Expand(text, data)
	if !ok {
		return ""
	}
	return v
}

// pathOf 允许数据路径写成 ${path} 形式。
func pathOf(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "${") && strings.HasSuffix(p, "}") {
		p = p[2 : len(p)-1]
	}
	return strings.TrimSpace(p)
}
