package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"

	"github.com/ByLCY/posslip/assets"
	"github.com/ByLCY/posslip/layout"
	"github.com/ByLCY/posslip/model"
	"github.com/ByLCY/posslip/qr"
	"github.com/ByLCY/posslip/template"
)

func logoPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func order(t *testing.T, items int) any {
	t.Helper()
	var list []string
	for i := 0; i < items; i++ {
		list = append(list, fmt.Sprintf(
			`{"unitQuantity": %d, "Product": {"name": "Item %d", "strength": "10mg", "productType": {"name": "Tab"}, "pricing": [{"unitPrice": 1.5}]}}`,
			i%3+1, i))
	}
	raw := fmt.Sprintf(`{
  "orderCode": "SO-7",
  "createdAt": "2024-01-02T03:04:05Z",
  "status": "PAID",
  "paymentMethod": "Card",
  "QRCode": "SO-7",
  "User": {"username": "bob"},
  "items": [%s],
  "PriceSubTotal": 10, "discountAmount": 1, "shippingCost": 0, "totalAmount": 9
}`, strings.Join(list, ","))
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	return data
}

func withLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

type failingQR struct{}

func (failingQR) Encode(payload string) ([]byte, error) {
	return nil, &qr.EncodingError{Payload: payload, Err: errors.New("capacity exceeded")}
}

func TestRenderOrderWritesPDF(t *testing.T) {
	s, err := New(Options{Assets: assets.FSLoader{FS: fstest.MapFS{"logo.png": {Data: logoPNG(t)}}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var sink bytes.Buffer
	if err := s.RenderOrder(context.Background(), order(t, 3), &sink); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(sink.Bytes(), []byte("%PDF")) {
		t.Fatalf("sink does not hold a PDF")
	}
}

func TestLayoutPlacesLogoAndQR(t *testing.T) {
	s, err := New(Options{Assets: assets.FSLoader{FS: fstest.MapFS{"logo.png": {Data: logoPNG(t)}}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc, err := s.Bind(order(t, 2))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	res, err := s.Layout(context.Background(), doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("auto-height slip should have one page, got %d", len(res.Pages))
	}
	images := res.Pages[0].Images
	if len(images) != 2 || images[0].Resource != layout.ImageLogo || images[1].Resource != layout.ImageQR {
		t.Fatalf("unexpected header images: %+v", images)
	}
	if images[0].Y != images[1].Y {
		t.Fatalf("logo and QR should share the header row")
	}
	if res.Pages[0].Height != res.Measurement.Height {
		t.Fatalf("page height %g should equal measured height %g", res.Pages[0].Height, res.Measurement.Height)
	}
}

func TestMissingLogoIsRecovered(t *testing.T) {
	logs := withLogger(t)
	s, err := New(Options{Assets: assets.FSLoader{FS: fstest.MapFS{}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc, err := s.Bind(order(t, 1))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	res, err := s.Layout(context.Background(), doc)
	if err != nil {
		t.Fatalf("missing logo should not fail: %v", err)
	}
	for _, img := range res.Pages[0].Images {
		if img.Resource == layout.ImageLogo {
			t.Fatalf("logo should be omitted")
		}
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "logo.png") {
		t.Fatalf("expected a warning about logo.png, got %q", logs.String())
	}
}

func TestFatalErrorsWriteNothing(t *testing.T) {
	overflow, err := template.ParseString(`
slip Tall v1 {
  page 57mm 40mm margin 1mm {
    items items {
      name: "${Product.name}"
      quantity: unitQuantity
      price: Product.pricing[0].unitPrice
      column item 50%
      column amount 50% end
    }
  }
}
`)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name   string
		opts   Options
		ctx    context.Context
		data   any
		target any
	}{
		{
			name:   "qr encoding",
			opts:   Options{Assets: assets.FSLoader{FS: fstest.MapFS{}}, QR: failingQR{}},
			ctx:    context.Background(),
			data:   order(t, 1),
			target: new(*qr.EncodingError),
		},
		{
			name: "row overflow",
			opts: Options{Template: overflow},
			ctx:  context.Background(),
			data: map[string]any{"items": []any{map[string]any{
				"unitQuantity": 1,
				"Product":      map[string]any{"name": strings.Repeat("overflowing name ", 200), "pricing": []any{}},
			}}},
			target: new(*layout.RowOverflowError),
		},
		{
			name: "canceled",
			opts: Options{Assets: assets.FSLoader{FS: fstest.MapFS{}}},
			ctx:  canceled,
			data: order(t, 1),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.opts)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			var sink bytes.Buffer
			err = s.RenderOrder(tc.ctx, tc.data, &sink)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.target != nil && !errors.As(err, tc.target) {
				t.Fatalf("error %v is not %T", err, tc.target)
			}
			if tc.ctx == canceled && !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if sink.Len() != 0 {
				t.Fatalf("sink received %d bytes on failure", sink.Len())
			}
		})
	}
}

func TestPaginatedSlipRepeatsHeader(t *testing.T) {
	tpl, err := template.Default()
	if err != nil {
		t.Fatalf("default template: %v", err)
	}
	s, err := New(Options{Template: tpl.WithPageHeight(120), Assets: assets.FSLoader{FS: fstest.MapFS{}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc, err := s.Bind(order(t, 200))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	res, err := s.Layout(context.Background(), doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("200 items should not fit on one 120mm page")
	}
	placed := 0
	for _, plan := range res.Plans {
		page := res.Pages[plan.Index]
		if len(page.Rows) == 0 || !page.Rows[0].Header {
			t.Fatalf("page %d does not start its table with the header", plan.Index)
		}
		placed += len(plan.Items)
	}
	if placed != 200 {
		t.Fatalf("expected 200 placed items, got %d", placed)
	}
	for i, page := range res.Pages {
		if page.Height != 120 {
			t.Fatalf("page %d height = %g, want 120", i, page.Height)
		}
	}
}

func TestRenderNormalizesCallerDocument(t *testing.T) {
	s, err := New(Options{Assets: assets.FSLoader{FS: fstest.MapFS{}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	qty, price := decimal.NewFromInt(3), decimal.RequireFromString("1.115")
	doc := model.Document{
		Recipient: model.Section{Title: "Bill to:", Fields: []model.Field{
			{Value: "Jane"},
			{Label: "Contact", Value: "  "},
		}},
		Items: []model.LineItem{{Name: "Tea", Quantity: qty, UnitPrice: price, Amount: model.LineAmount(qty, price)}},
	}
	res, err := s.Layout(context.Background(), doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, tb := range res.Pages[0].Texts {
		if strings.Contains(tb.Content, "Contact") {
			t.Fatalf("blank field was drawn: %q", tb.Content)
		}
	}

	doc.Items[0].Amount = decimal.NewFromInt(99)
	var sink bytes.Buffer
	if err := s.Render(context.Background(), doc, &sink); err == nil {
		t.Fatalf("inconsistent line amount should be rejected")
	}
	if sink.Len() != 0 {
		t.Fatalf("sink received %d bytes on failure", sink.Len())
	}
}

func TestLoggerSetAfterNewReachesRenderer(t *testing.T) {
	tpl, err := template.ParseString(`
slip Fonts v1 {
  resources {
    font Body {
      src: "fonts/missing.ttf"
    }
    style body {
      font: Body
    }
  }
  page 57mm {
    items items {
      name: "${Product.name}"
      quantity: unitQuantity
      price: Product.pricing[0].unitPrice
      column item 60%
      column amount 40% end
    }
  }
}
`)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	s, err := New(Options{Template: tpl, Assets: assets.FSLoader{FS: fstest.MapFS{}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logs := withLogger(t)

	var sink bytes.Buffer
	if err := s.RenderOrder(context.Background(), order(t, 1), &sink); err != nil {
		t.Fatalf("missing font should fall back: %v", err)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "missing.ttf") {
		t.Fatalf("expected a font fallback warning, got %q", logs.String())
	}
}
