package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/posslip/assets"
	"github.com/ByLCY/posslip/layout"
	"github.com/ByLCY/posslip/pos"
	canvasrenderer "github.com/ByLCY/posslip/renderer/canvas"
	"github.com/ByLCY/posslip/template"
)

func main() {
	tplPath := flag.String("template", "", "小票模板路径，留空使用内置 57mm 模板")
	input := flag.String("in", "order.json", "订单 JSON 文件路径")
	output := flag.String("out", "output/slip.pdf", "PDF 输出路径")
	assetDir := flag.String("assets", "static", "logo 与字体所在目录")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	pageHeight := flag.Float64("page-height", 0, "固定页高（mm），大于 0 时分页输出")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	pos.SetLogger(logger)

	cfg := runConfig{
		templatePath: *tplPath,
		inputPath:    *input,
		outputPath:   *output,
		assetDir:     *assetDir,
		debugPath:    *debug,
		pageHeight:   *pageHeight,
		logger:       logger,
	}
	if err := run(context.Background(), cfg); err != nil {
		logger.Error("生成小票失败", "err", err)
		os.Exit(1)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

type runConfig struct {
	templatePath string
	inputPath    string
	outputPath   string
	assetDir     string
	debugPath    string
	pageHeight   float64
	logger       *slog.Logger
}

// run 串联模板、数据绑定、排版与渲染。
func run(ctx context.Context, cfg runConfig) error {
	tpl, err := loadTemplate(cfg.templatePath)
	if err != nil {
		return err
	}
	if cfg.pageHeight > 0 {
		tpl = tpl.WithPageHeight(cfg.pageHeight)
	}

	data, err := readOrder(cfg.inputPath)
	if err != nil {
		return err
	}

	loader := assets.NewDirLoader(cfg.assetDir)
	surface := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Assets: loader, Logger: cfg.logger})
	slip, err := pos.New(pos.Options{Template: tpl, Assets: loader, Surface: surface})
	if err != nil {
		return err
	}

	doc, err := slip.Bind(data)
	if err != nil {
		return fmt.Errorf("绑定订单数据失败: %w", err)
	}

	if cfg.debugPath != "" {
		res, err := slip.Layout(ctx, doc)
		if err != nil {
			return fmt.Errorf("布局计算失败: %w", err)
		}
		if err := writeDebug(res, cfg.debugPath); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := slip.Render(ctx, doc, &buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(cfg.outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func loadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.Default()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()
	return template.Parse(file)
}

func readOrder(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开订单文件 %s: %w", path, err)
	}
	defer file.Close()
	dec := json.NewDecoder(file)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("解析订单 JSON 失败: %w", err)
	}
	return data, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	file, err := os.Create(debugPath)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	defer file.Close()
	if err := layout.WriteDebugJSON(result, file); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
