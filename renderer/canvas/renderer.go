package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/Patrick762/pdf-letter/fonts"
	"github.com/Patrick762/pdf-letter/layout"
)

const (
	defaultStrokeWidth = 1.0 // pt
	// 图片按该分辨率缩小后再嵌入，避免过大的 logo 撑大 PDF
	maxImageDPI = 300.0
	creator     = "pdf-letter"
)

// Renderer creates canvas-backed PDF surfaces. It implements layout.Backend and
// can be shared between documents; loaded font families are cached.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var _ layout.Backend = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via builtin:<name>
	Images  map[string]Resource // built-in images accessible via builtin:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    ingest(opts.Fonts),
		imageBlobs:   ingest(opts.Images),
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	return r
}

func ingest(resources map[string]Resource) map[string][]byte {
	blobs := map[string][]byte{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在使用处报错
			if len(data) > 0 {
				blobs[name] = data
			}
		}
	}
	return blobs
}

// NewSurface implements layout.Backend. setup.Font selects the font:
// empty for the built-in default, "builtin:<name>" for injected or embedded
// fonts, otherwise a TTF/OTF path relative to the base directory.
func (r *Renderer) NewSurface(setup layout.PageSetup) (layout.Surface, error) {
	family, err := r.ensureFontFamily(setup.Font)
	if err != nil {
		return nil, err
	}
	w, h := toMm(setup.Width), toMm(setup.Height)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	return &surface{
		r:        r,
		setup:    setup,
		family:   family,
		canvas:   c,
		ctx:      ctx,
		fontSize: 12,
	}, nil
}

func (r *Renderer) ensureFontFamily(font string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[font]; ok {
		return family, nil
	}
	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("letter")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", displayFont(font), err)
	}
	r.fontFamilies[font] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return fonts.Load(fonts.Default)
	}
	if name, ok := builtinName(src); ok {
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	data, err := os.ReadFile(r.resolve(src))
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func (r *Renderer) loadImage(ref string) (image.Image, error) {
	if name, ok := builtinName(ref); ok {
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 builtin:%s", name)
		}
		img, err := imaging.Decode(bytes.NewReader(blob), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 builtin:%s 失败: %w", name, err)
		}
		return img, nil
	}
	img, err := imaging.Open(r.resolve(ref), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", ref, err)
	}
	return img, nil
}

func (r *Renderer) resolve(path string) string {
	if filepath.IsAbs(path) || r.baseDir == "" {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

func builtinName(ref string) (string, bool) {
	for _, prefix := range []string{"built-in:", "builtin:"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}
	return "", false
}

func displayFont(font string) string {
	if font == "" {
		return fonts.Default
	}
	return font
}

// surface 实现 layout.Surface：坐标以 pt 传入，绘制到以 mm 为单位的 canvas。
type surface struct {
	r      *Renderer
	setup  layout.PageSetup
	family *canvas.FontFamily
	canvas *canvas.Canvas
	ctx    *canvas.Context

	fontSize float64
	pen      *point
	segments []layout.Line

	sink    io.Writer
	writer  *pdf.PDF
	err     error
	flushed bool
	ended   bool
}

type point struct{ x, y float64 }

var _ layout.Surface = (*surface)(nil)

func (s *surface) SetFontSize(size float64) { s.fontSize = size }

// DrawText 以 y 为文本顶部，按字体 ascent 换算基线。
func (s *surface) DrawText(value string, x, y float64, opts layout.TextOptions) {
	if value == "" {
		return
	}
	face := s.family.Face(s.fontSize, canvas.Black, canvas.FontRegular, canvas.FontNormal)

	var textAlign canvas.TextAlign
	anchorX := x
	switch opts.Align {
	case layout.AlignCenter:
		textAlign = canvas.Center
		anchorX = x + opts.Width/2
	case layout.AlignRight:
		textAlign = canvas.Right
		anchorX = x + opts.Width
	default:
		textAlign = canvas.Left
	}

	textLine := canvas.NewTextLine(face, value, textAlign)
	baseline := toMm(y) + face.Metrics().Ascent
	s.ctx.DrawText(toMm(anchorX), baseline, textLine)
}

// DrawImage 按 opts.Width 缩放图片，保持宽高比。
func (s *surface) DrawImage(ref string, x, y float64, opts layout.ImageOptions) error {
	if ref == "" {
		return fmt.Errorf("图片引用为空")
	}
	img, err := s.r.loadImage(ref)
	if err != nil {
		return err
	}
	px := img.Bounds().Dx()
	if px <= 0 {
		return fmt.Errorf("图片 %s 宽度为 0", ref)
	}
	width := toMm(opts.Width)
	if width <= 0 {
		width = float64(px) / 4.0
	}
	if limit := int(width / 25.4 * maxImageDPI); px > limit && limit > 0 {
		img = imaging.Resize(img, limit, 0, imaging.Lanczos)
		px = img.Bounds().Dx()
	}
	s.ctx.DrawImage(toMm(x), toMm(y), img, canvas.DPMM(float64(px)/width))
	return nil
}

func (s *surface) MoveTo(x, y float64) { s.pen = &point{x, y} }

func (s *surface) LineTo(x, y float64) {
	if s.pen == nil {
		s.pen = &point{x, y}
		return
	}
	s.segments = append(s.segments, layout.Line{X1: s.pen.x, Y1: s.pen.y, X2: x, Y2: y})
	s.pen = &point{x, y}
}

// Stroke 以黑色描出当前路径并清空。
func (s *surface) Stroke() {
	s.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	s.ctx.SetStrokeColor(canvas.Black)
	s.ctx.SetStrokeWidth(toMm(defaultStrokeWidth))
	for _, ln := range s.segments {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		s.ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
	s.segments = nil
	s.pen = nil
}

func (s *surface) DrawRect(x, y, w, h float64, style layout.StrokeStyle) {
	width := style.Width
	if width <= 0 {
		width = defaultStrokeWidth
	}
	s.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	s.ctx.SetStrokeColor(colorFromLayout(style.Color))
	s.ctx.SetStrokeWidth(toMm(width))
	s.ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

func (s *surface) Pipe(w io.Writer) { s.sink = w }

// FlushPages 将页面写入 PDF；错误在 End 时返回。
func (s *surface) FlushPages() {
	if s.flushed {
		return
	}
	s.flushed = true
	if s.sink == nil {
		s.err = fmt.Errorf("未设置输出目标")
		return
	}
	s.writer = pdf.New(s.sink, toMm(s.setup.Width), toMm(s.setup.Height), nil)
	s.writer.SetInfo(s.setup.Title, s.setup.Subject, "", "", creator)
	s.canvas.RenderTo(s.writer)
}

func (s *surface) End() error {
	if s.ended {
		return layout.ErrEnded
	}
	s.ended = true
	s.FlushPages()
	if s.err != nil {
		return s.err
	}
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func toMm(pt float64) float64 { return pt * layout.PtToMm }
