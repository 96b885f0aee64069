package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/attp/dsl"
	"github.com/ByLCY/attp/emoji"
	"github.com/ByLCY/attp/encoder"
	"github.com/ByLCY/attp/fonts"
	"github.com/ByLCY/attp/layout"
	canvasrenderer "github.com/ByLCY/attp/renderer/canvas"
	rasterrenderer "github.com/ByLCY/attp/renderer/raster"
	"github.com/ByLCY/attp/sticker"
	"github.com/ByLCY/attp/style"
)

// options 汇总命令行参数。
type options struct {
	text        string
	style       string
	family      string
	fontFile    string
	palette     string
	color       string
	lineHeight  string
	out         string
	job         string
	data        string
	workDir     string
	emojiCache  string
	emojiDir    string
	brand       string
	encoder     string
	debug       string
	proof       string
	concurrency int
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.text, "text", "", "贴纸文字")
	flag.StringVar(&opts.style, "style", "blink", "样式：blink、gradient、walk、ttp")
	flag.StringVar(&opts.family, "font", fonts.DefaultFamily, "字体名称")
	flag.StringVar(&opts.fontFile, "font-file", "", "以 -font 名称注册的字体文件")
	flag.StringVar(&opts.palette, "palette", "", "逗号分隔的调色板，如 #f00,#0f0")
	flag.StringVar(&opts.color, "color", "", "静态贴纸的填充色")
	flag.StringVar(&opts.lineHeight, "line-height", "", "行高，如 1.2x 或 +10px，默认随样式")
	flag.StringVar(&opts.out, "out", "", "输出路径，默认 attp.<格式>")
	flag.StringVar(&opts.job, "job", "", "任务文件路径")
	flag.StringVar(&opts.data, "data", "", "绑定到任务文件的 JSON/YAML 数据，@path 表示从文件读取")
	flag.StringVar(&opts.workDir, "workdir", "", "帧文件的临时目录")
	flag.StringVar(&opts.emojiCache, "emoji", "", "表情缓存 JSON 文件")
	flag.StringVar(&opts.emojiDir, "emoji-dir", "", "表情图片目录（文件名为十六进制码位）")
	flag.StringVar(&opts.brand, "brand", emoji.DefaultBrand, "表情图片品牌")
	flag.StringVar(&opts.encoder, "encoder", "auto", "动图编码器：auto、exec、gif")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径（任务模式下为目录）")
	flag.StringVar(&opts.proof, "proof", "", "布局校样 PDF 输出路径（任务模式下为目录）")
	flag.IntVar(&opts.concurrency, "concurrency", 0, "并行渲染的帧数，默认 CPU 数")
	flag.BoolVar(&opts.verbose, "v", false, "输出调试日志")
	flag.Parse()

	logger := newLogger(opts.verbose)
	gg.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	outputs, err := run(ctx, opts, logger)
	stop()
	if err != nil {
		log.Fatalf("生成贴纸失败: %v", err)
	}
	for _, out := range outputs {
		fmt.Printf("已生成贴纸：%s\n", out)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// task 是一张待生成的贴纸及其输出位置。
type task struct {
	req sticker.Request
	out string
}

// run 串联字体、表情、排版、渲染与编码，返回生成的文件列表。
func run(ctx context.Context, opts options, logger *slog.Logger) ([]string, error) {
	reg := fonts.NewRegistry()
	if opts.fontFile != "" {
		if err := reg.RegisterSource(opts.family, opts.fontFile, ""); err != nil {
			return nil, err
		}
	}
	cache := emoji.NewCache()
	if err := loadEmoji(cache, opts.brand, opts.emojiCache, opts.emojiDir); err != nil {
		return nil, err
	}

	var (
		tasks []task
		err   error
	)
	if opts.job != "" {
		tasks, err = jobTasks(opts, reg, cache)
	} else {
		tasks, err = flagTasks(opts)
	}
	if err != nil {
		return nil, err
	}

	enc, err := newEncoder(opts.encoder, logger)
	if err != nil {
		return nil, err
	}
	r := rasterrenderer.NewRenderer(reg)
	defer r.Close()

	gen := sticker.New(r, cache.Index(), cache, sticker.Config{
		WorkDir:     opts.workDir,
		Encoder:     enc,
		Concurrency: opts.concurrency,
		Brand:       opts.brand,
		Logger:      logger,
	})
	proofer := canvasrenderer.NewRenderer(reg)

	multi := len(tasks) > 1 || opts.job != ""
	var outputs []string
	for i, t := range tasks {
		if _, ok := reg.Lookup(t.req.Family); !ok {
			return outputs, fmt.Errorf("第 %d 张贴纸: 未注册的字体 %s（可用：%s）", i+1, t.req.Family, strings.Join(reg.Families(), ", "))
		}
		res, err := gen.Render(ctx, t.req)
		if err != nil {
			return outputs, fmt.Errorf("第 %d 张贴纸: %w", i+1, err)
		}
		out := t.out
		if out == "" {
			out = "attp." + res.Format
		} else if filepath.Ext(out) == "" {
			out += "." + res.Format
		}
		if err := writeFile(out, res.Data); err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
		logger.Info("sticker written", "out", out, "style", t.req.Style.String(), "frames", res.Frames, "size", res.Layout.FontSize, "fits", res.Layout.Fits)

		if opts.debug != "" {
			path := sidePath(opts.debug, out, ".json", multi)
			if err := writeDebug(t.req.Text, res.Layout, path); err != nil {
				return outputs, err
			}
		}
		if opts.proof != "" {
			pdf, err := proofer.Render(res.Layout, t.req.Style, canvasrenderer.Meta{
				Title:    t.req.Text,
				Subject:  t.req.Style.String(),
				Keywords: []string{"attp", t.req.Style.String()},
			})
			if err != nil {
				return outputs, fmt.Errorf("渲染校样失败: %w", err)
			}
			if err := writeFile(sidePath(opts.proof, out, ".pdf", multi), pdf); err != nil {
				return outputs, err
			}
		}
	}
	return outputs, nil
}

// flagTasks 根据命令行参数构造单张贴纸。
func flagTasks(opts options) ([]task, error) {
	if opts.text == "" {
		return nil, fmt.Errorf("需要 -text 或 -job")
	}
	kind, err := style.ParseKind(opts.style)
	if err != nil {
		return nil, err
	}
	req := sticker.Request{Text: opts.text, Style: kind, Family: opts.family}
	if opts.palette != "" {
		if req.Palette, err = style.ParsePalette(strings.Split(opts.palette, ",")); err != nil {
			return nil, err
		}
	}
	if opts.color != "" {
		c, err := style.ParseColor(opts.color)
		if err != nil {
			return nil, err
		}
		req.Color = &c
	}
	if opts.lineHeight != "" {
		lh, err := layout.ParseLineHeight(opts.lineHeight)
		if err != nil {
			return nil, err
		}
		req.LineHeight = &lh
	}
	return []task{{req: req, out: opts.out}}, nil
}

// jobTasks 解析任务文件，注册其中声明的字体与表情，并展开为贴纸列表。
func jobTasks(opts options, reg *fonts.Registry, cache *emoji.Cache) ([]task, error) {
	file, err := os.Open(opts.job)
	if err != nil {
		return nil, fmt.Errorf("无法打开任务文件 %s: %w", opts.job, err)
	}
	defer file.Close()

	job, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析任务文件失败: %w", err)
	}
	data, err := loadData(opts.data)
	if err != nil {
		return nil, err
	}
	plan, err := dsl.Compile(job, data)
	if err != nil {
		return nil, fmt.Errorf("任务 %s: %w", job.Name, err)
	}

	baseDir := filepath.Dir(opts.job)
	for _, f := range plan.Fonts {
		if err := reg.RegisterSource(f.Family, f.Src, baseDir); err != nil {
			return nil, err
		}
	}
	for _, e := range plan.Emoji {
		src := e.Src
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("表情来源 %s: %w", e.Src, err)
		}
		if info.IsDir() {
			err = loadEmoji(cache, e.Brand, "", src)
		} else {
			err = loadEmoji(cache, e.Brand, src, "")
		}
		if err != nil {
			return nil, err
		}
	}

	tasks := make([]task, 0, len(plan.Stickers))
	for i, s := range plan.Stickers {
		family := s.Family
		if family == "" {
			family = opts.family
		}
		out := s.Out
		if out == "" {
			out = fmt.Sprintf("%s-%02d", plan.Name, i+1)
		}
		tasks = append(tasks, task{
			req: sticker.Request{
				Text:    s.Text,
				Style:   s.Style,
				Family:  family,
				Palette: s.Palette,
				Color:   s.Color,
				Brand:   s.Brand,

				LineHeight: s.LineHeight,
			},
			out: out,
		})
	}
	return tasks, nil
}

// loadData 解析绑定数据。YAML 是 JSON 的超集，两种格式共用一个解码器。
func loadData(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	raw := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取 data 文件失败: %w", err)
		}
		raw = b
	}
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data 失败: %w", err)
	}
	return data, nil
}

// loadEmoji 将 JSON 缓存与图片目录载入 cache；目录中的图片归入 brand。
func loadEmoji(cache *emoji.Cache, brand, jsonPath, dir string) error {
	if jsonPath != "" {
		loaded, err := emoji.LoadFile(jsonPath)
		if err != nil {
			return err
		}
		cache.Merge(loaded)
	}
	if dir != "" {
		if _, err := cache.AddDir(brand, dir); err != nil {
			return err
		}
	}
	return nil
}

func newEncoder(name string, logger *slog.Logger) (encoder.Encoder, error) {
	switch name {
	case "exec":
		return &encoder.Exec{Logger: logger}, nil
	case "gif":
		return encoder.GIF{}, nil
	case "auto", "":
		ex := &encoder.Exec{Logger: logger}
		if err := ex.Available(); err != nil {
			logger.Info("external encoder unavailable, falling back to GIF", "err", err)
			return encoder.GIF{}, nil
		}
		return ex, nil
	default:
		return nil, fmt.Errorf("未知编码器 %q", name)
	}
}

// sidePath 返回调试或校样文件的路径；任务模式下 flagVal 视为目录。
func sidePath(flagVal, out, ext string, multi bool) string {
	if !multi {
		return flagVal
	}
	base := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	return filepath.Join(flagVal, base+ext)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

func writeDebug(text string, l *layout.Layout, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(text, l, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
