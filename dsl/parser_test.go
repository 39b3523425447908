package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/posslip/dsl"
)

const sampleDSL = `
slip POS v1 {
  meta {
    title: "Slip ${orderCode}"
    keywords: [
      "pos"
      "receipt"
    ]
  }

  resources {
    font Regular {
      src: "builtin:gomono"
    }
    style body {
      font: Regular
      size: 6pt
      line-height: 1.2x
    }
  }

  page 57mm auto margin 1mm {
    // 订单信息
    info width 70% {
      title: "Order details:"
      field Code "${orderCode}"
    }

    items items min-row 10pt {
      quantity: unitQuantity
      price: Product.pricing[0].unitPrice
      column amount 30% end { header: "Amount" }
    }

    footer {
      "Thank you for your purchase!"
    }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "POS" {
		t.Fatalf("expected document name POS, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{doc.Sections[0].Kind(), doc.Sections[1].Kind(), doc.Sections[2].Kind()}
	if strings.Join(kinds, ",") != "meta,resources,page" {
		t.Fatalf("unexpected section kinds: %v", kinds)
	}

	meta := doc.Sections[0].Meta.Block.Assignments()
	if got := meta["title"].Text(); got != "Slip ${orderCode}" {
		t.Fatalf("expected title with placeholder, got %s", got)
	}
	if got := meta["keywords"].Strings(); len(got) != 2 || got[1] != "receipt" {
		t.Fatalf("unexpected keywords: %v", got)
	}

	styles := doc.Sections[1].Resources.Block.Commands("style")
	if len(styles) != 1 || styles[0].Arg(0) != "body" {
		t.Fatalf("expected style body, got %+v", styles)
	}
	props := styles[0].Block.Assignments()
	if props["size"].Text() != "6pt" || props["line-height"].Text() != "1.2x" {
		t.Fatalf("unexpected style props: size=%s line-height=%s", props["size"].Text(), props["line-height"].Text())
	}

	page := doc.Sections[2].Page
	if len(page.Params) != 4 {
		t.Fatalf("expected 4 page params, got %d", len(page.Params))
	}
	if page.Params[0].Value != "57mm" || page.Params[1].Value != "auto" || page.Params[3].Value != "1mm" {
		t.Fatalf("unexpected page params: %+v", page.Params)
	}

	info := page.Block.Commands("info")
	if len(info) != 1 {
		t.Fatalf("expected info command")
	}
	if opts := info[0].Options(0); opts["width"] != "70%" {
		t.Fatalf("unexpected info options: %v", opts)
	}
	fields := info[0].Block.Commands("field")
	if len(fields) != 1 || fields[0].Arg(0) != "Code" || fields[0].Arg(1) != "${orderCode}" {
		t.Fatalf("unexpected field: %+v", fields)
	}

	items := page.Block.Commands("items")[0]
	if items.Arg(0) != "items" || items.Options(1)["min-row"] != "10pt" {
		t.Fatalf("unexpected items args: %+v", items.Args)
	}
	price := items.Block.Assignments()["price"]
	if price == nil || price.Expr == nil {
		t.Fatalf("price should capture an expression")
	}
	if got := price.Text(); got != "Product.pricing[0].unitPrice" {
		t.Fatalf("unexpected expression text: %s", got)
	}
	column := items.Block.Commands("column")[0]
	if opts := column.Options(2, "end", "start"); opts["end"] != "true" || column.Arg(1) != "30%" {
		t.Fatalf("unexpected column args: %+v", column.Args)
	}

	footer := page.Block.Commands("footer")[0]
	if lines := footer.Block.Texts(); len(lines) != 1 || lines[0] != "Thank you for your purchase!" {
		t.Fatalf("unexpected footer lines: %v", lines)
	}
}

func TestParseRejectsUnknownRoot(t *testing.T) {
	if _, err := dsl.ParseString(`doc Receipt v1 { }`); err == nil {
		t.Fatalf("expected error for non-slip root")
	}
}

func TestParseColorValues(t *testing.T) {
	src := `
slip Colors v1 {
  resources {
    style body {
      # 注释不影响颜色
      color: #c0c0c0
      shade: #333
      overlay: #11223344
    }
  }
  page 57mm {
  }
}
`
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	props := doc.Sections[0].Resources.Block.Commands("style")[0].Block.Assignments()
	for key, want := range map[string]string{"color": "#c0c0c0", "shade": "#333", "overlay": "#11223344"} {
		v := props[key]
		if v == nil || v.Color == nil || *v.Color != want {
			t.Fatalf("%s: expected color token %s, got %+v", key, want, v)
		}
	}
}
