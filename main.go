package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/Patrick762/pdf-letter/dsl"
	"github.com/Patrick762/pdf-letter/internal/config"
	"github.com/Patrick762/pdf-letter/internal/logging"
	"github.com/Patrick762/pdf-letter/layout"
	canvasrenderer "github.com/Patrick762/pdf-letter/renderer/canvas"
)

// Exit codes: 0=success, 1=general, 2=usage or validation, 3=I/O.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitIO      = 3
)

var (
	ErrUsage     = errors.New("参数错误")
	ErrReadInput = errors.New("无法读取输入文件")
	ErrParse     = errors.New("解析信件描述失败")
	ErrData      = errors.New("解析绑定数据失败")
)

type cliFlags struct {
	in       string
	out      string
	debug    string
	data     string
	dataFile string
	config   string
	envFile  string
	lang     string
	font     string
	logLevel string
	strict   bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(filepath.Base(args[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.in, "in", "i", "", "信件描述文件路径（letter / invoice / delivery-note）")
	fs.StringVarP(&f.out, "out", "o", "", "PDF 输出路径，默认按文档类型命名")
	fs.StringVar(&f.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.StringVar(&f.data, "data", "", "绑定到描述文件的 JSON 数据")
	fs.StringVar(&f.dataFile, "data-file", "", "绑定数据文件（JSON 或 YAML）")
	fs.StringVarP(&f.config, "config", "c", "", "YAML 配置文件")
	fs.StringVar(&f.envFile, "env-file", ".env", "环境变量文件")
	fs.StringVar(&f.lang, "lang", "", "文档语言代码，覆盖配置")
	fs.StringVar(&f.font, "font", "", "字体覆盖：TTF 路径或 builtin:<name>")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别，覆盖配置")
	fs.BoolVar(&f.strict, "strict-footer", false, "正文越过页脚分隔线时失败")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	if f.in == "" && fs.NArg() > 0 {
		f.in = fs.Arg(0)
	}
	if f.in == "" {
		return nil, fmt.Errorf("%w: 缺少 --in", ErrUsage)
	}
	if f.data != "" && f.dataFile != "" {
		return nil, fmt.Errorf("%w: --data 与 --data-file 不能同时使用", ErrUsage)
	}
	return f, nil
}

func main() {
	os.Exit(realMain(os.Args, os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	settings, err := loadSettings(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	logg, err := logging.New(settings.Log.Level, settings.Log.Format, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	out, err := run(flags, settings, logg)
	if err != nil {
		logging.LogError(logg, "main", "run", "生成 PDF 失败", flags.in, err)
		return exitCodeFor(err)
	}
	fmt.Fprintf(stdout, "已生成 PDF：%s\n", out)
	return ExitSuccess
}

// loadSettings 按 配置文件 < .env/环境变量 < 命令行 的顺序合并设置。
func loadSettings(flags *cliFlags) (*config.Config, error) {
	settings, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(flags.envFile); err != nil {
		return nil, err
	}
	if flags.lang != "" {
		settings.Lang = flags.lang
	}
	if flags.font != "" {
		settings.Font = flags.font
	}
	if flags.logLevel != "" {
		settings.Log.Level = flags.logLevel
	}
	if flags.strict {
		settings.StrictFooter = true
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// run 串联解析、绑定、布局与渲染，返回 PDF 路径。
func run(flags *cliFlags, settings *config.Config, logg *logrus.Logger) (string, error) {
	file, err := os.Open(flags.in)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrReadInput, flags.in, err)
	}
	defer file.Close()

	doc, err := dsl.ParseFile(flags.in, file)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	data, err := loadData(flags)
	if err != nil {
		return "", err
	}

	cfg, err := layout.Build(doc, data)
	if err != nil {
		return "", fmt.Errorf("构建文档配置失败: %w", err)
	}
	logg.WithFields(logrus.Fields{"module": "main", "kind": cfg.Kind(), "in": flags.in}).Debug("配置已构建")

	outputPath := flags.out
	if outputPath == "" {
		outputPath = filepath.Join(settings.OutputDir, cfg.Kind().DefaultPath())
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	opts := layout.Options{
		Lang:         settings.Lang,
		Path:         outputPath,
		Font:         settings.Font,
		Logger:       logg,
		StrictFooter: settings.StrictFooter,
	}

	if flags.debug != "" {
		if err := writeDebug(cfg, opts, flags.debug); err != nil {
			return "", err
		}
	}

	assets := settings.AssetsDir
	if assets == "" {
		assets = filepath.Dir(flags.in)
	}
	opts.Backend = canvasrenderer.NewRenderer(assets)
	pdfDoc, err := layout.Render(cfg, opts)
	if err != nil {
		return "", fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := pdfDoc.End(); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if pdfDoc.Overlaps() {
		logg.WithField("out", outputPath).Warn("正文与页脚重叠，请减少正文行数")
	}
	return outputPath, nil
}

func loadData(flags *cliFlags) (any, error) {
	raw := []byte(flags.data)
	if flags.dataFile != "" {
		var err error
		if raw, err = os.ReadFile(flags.dataFile); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrReadInput, flags.dataFile, err)
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := config.ParseData(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrData, err)
	}
	return data, nil
}

// writeDebug 用 Recorder 再走一遍布局，输出绘制记录 JSON。
func writeDebug(cfg layout.Config, opts layout.Options, debugPath string) error {
	rec := layout.NewRecorder()
	opts.Backend = rec
	opts.Writer = io.Discard
	doc, err := layout.Render(cfg, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if err := doc.End(); err != nil {
		return err
	}
	if err := layout.WriteDebugJSON(rec.Result(), debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// exitCodeFor returns the exit code for err; callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, layout.ErrBackend) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrData) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, layout.ErrValidation) ||
		errors.Is(err, layout.ErrPrecondition) ||
		errors.Is(err, layout.ErrUnknownKind) ||
		errors.Is(err, layout.ErrUnknownField) ||
		errors.Is(err, layout.ErrFieldType) ||
		errors.Is(err, layout.ErrFooterOverlap) {
		return ExitUsage
	}

	return ExitGeneral
}
