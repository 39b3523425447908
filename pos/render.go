// Package pos 串联模板、排版与渲染，把一张订单输出为 POS 小票 PDF。
package pos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"sync"

	"github.com/ByLCY/posslip/assets"
	"github.com/ByLCY/posslip/layout"
	"github.com/ByLCY/posslip/model"
	"github.com/ByLCY/posslip/qr"
	"github.com/ByLCY/posslip/renderer"
	canvasrenderer "github.com/ByLCY/posslip/renderer/canvas"
	"github.com/ByLCY/posslip/template"
)

// Options 配置小票生成器，零值字段使用缺省实现。
type Options struct {
	// Template 为 nil 时使用内置 57mm 模板。
	Template *template.Template
	// Assets 为 nil 时从当前目录读取 logo 与字体。
	Assets assets.Loader
	// Surface 为 nil 时使用 tdewolff/canvas PDF 渲染器。
	Surface renderer.Surface
	// QR 为 nil 时使用 go-qrcode PNG 编码器。
	QR qr.Encoder
}

// Slip 是可复用的小票生成器。每次渲染互不共享可变状态，可并发使用。
type Slip struct {
	tpl     *template.Template
	assets  assets.Loader
	surface renderer.Surface
	qr      qr.Encoder
	engine  *layout.Engine
}

// New 校验模板并创建生成器。
func New(opts Options) (*Slip, error) {
	s := &Slip{tpl: opts.Template, assets: opts.Assets, surface: opts.Surface, qr: opts.QR}
	if s.tpl == nil {
		tpl, err := template.Default()
		if err != nil {
			return nil, fmt.Errorf("加载内置模板失败: %w", err)
		}
		s.tpl = tpl
	}
	if s.assets == nil {
		s.assets = assets.NewDirLoader(".")
	}
	if s.surface == nil {
		s.surface = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Assets: s.assets, Logger: slog.New(forwardHandler{})})
	}
	if s.qr == nil {
		s.qr = qr.NewPNGEncoder()
	}
	engine, err := layout.NewEngine(s.tpl.Config(), s.surface)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Bind 用模板把订单数据转换为文档。
func (s *Slip) Bind(data any) (model.Document, error) {
	return s.tpl.Bind(data)
}

// Layout 读取资源并完成排版，不产生任何输出。
// logo 读取或解码失败只记录告警并省略；二维码编码失败与排版错误直接返回。
func (s *Slip) Layout(ctx context.Context, doc model.Document) (*layout.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 调用方可能直接构造 Document，这里统一规范化并校验金额。
	doc, err := model.NewDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("文档无效: %w", err)
	}
	var imgs layout.Images
	if doc.Header.Logo {
		imgs.Logo = s.loadLogo()
	}
	if doc.Header.QRPayload != "" {
		png, err := s.qr.Encode(doc.Header.QRPayload)
		if err != nil {
			return nil, err
		}
		imgs.QR = png
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.engine.Layout(doc, imgs)
	if err != nil {
		return nil, err
	}
	attrs := []any{
		"height", res.Measurement.Height,
		"pages", len(res.Pages),
		"items", len(doc.Items),
		"footerY", res.Measurement.FooterY,
	}
	if total, ok := doc.GrandTotal(); ok {
		attrs = append(attrs, "total", total.ValueText())
	}
	Logger().Debug("排版完成", attrs...)
	return res, nil
}

func (s *Slip) loadLogo() []byte {
	path := s.tpl.LogoPath()
	if path == "" {
		return nil
	}
	if !s.assets.Exists(path) {
		Logger().Warn("logo 不存在，已省略", "path", path)
		return nil
	}
	data, err := s.assets.ReadBytes(path)
	if err != nil {
		Logger().Warn("logo 不可用，已省略", "path", path, "err", err)
		return nil
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		Logger().Warn("logo 无法解码，已省略", "path", path, "err", err)
		return nil
	}
	return data
}

// Render 排版并渲染 doc，成功后把完整的 PDF 一次写入 sink。任何错误都发生在写入之前。
func (s *Slip) Render(ctx context.Context, doc model.Document, sink io.Writer) error {
	res, err := s.Layout(ctx, doc)
	if err != nil {
		return err
	}
	pdf, err := s.surface.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := sink.Write(pdf); err != nil {
		return fmt.Errorf("写出 PDF 失败: %w", err)
	}
	return nil
}

// RenderOrder 绑定订单数据后渲染。
func (s *Slip) RenderOrder(ctx context.Context, data any, sink io.Writer) error {
	doc, err := s.Bind(data)
	if err != nil {
		return fmt.Errorf("绑定订单数据失败: %w", err)
	}
	return s.Render(ctx, doc, sink)
}

var (
	defaultOnce sync.Once
	defaultSlip *Slip
	defaultErr  error
)

// Render 使用内置模板与缺省组件渲染 doc。
func Render(ctx context.Context, doc model.Document, sink io.Writer) error {
	defaultOnce.Do(func() {
		defaultSlip, defaultErr = New(Options{})
	})
	if defaultErr != nil {
		return defaultErr
	}
	return defaultSlip.Render(ctx, doc, sink)
}
