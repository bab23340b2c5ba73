package layout

import "io"

// Surface is the drawing primitive interface consumed by the engine.
// 坐标单位为 pt，原点位于页面左上角，y 向下增长；文本的 y 为行顶部。
type Surface interface {
	SetFontSize(size float64)
	DrawText(value string, x, y float64, opts TextOptions)
	DrawImage(ref string, x, y float64, opts ImageOptions) error
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
	DrawRect(x, y, w, h float64, style StrokeStyle)
	Pipe(w io.Writer)
	FlushPages()
	End() error
}

// Backend creates a drawing surface for one document.
type Backend interface {
	NewSurface(setup PageSetup) (Surface, error)
}

// PhaseMarker 是可选接口：实现者会在每个阶段开始前收到通知，用于调试或记录。
type PhaseMarker interface {
	MarkPhase(p Phase)
}

// Phase names one of the fixed rendering stages.
type Phase string

const (
	PhaseBorders Phase = "borders"
	PhaseHead    Phase = "head"
	PhaseContent Phase = "content"
	PhaseFooter  Phase = "footer"
)

// Align 文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextOptions 控制单行文本的对齐；Width 为对齐所用的容器宽度（pt），左对齐时可为 0。
type TextOptions struct {
	Align Align   `json:"align,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// ImageOptions 控制图片尺寸；高度按图片宽高比推算。
type ImageOptions struct {
	Width float64 `json:"width"`
}

// StrokeStyle 描述矩形描边。
type StrokeStyle struct {
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}

// PageSetup describes the single page the surface draws on.
type PageSetup struct {
	Lang        string  `json:"lang"`
	Size        string  `json:"size"`
	Orientation string  `json:"orientation"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Margin      Margin  `json:"margin"`
	Font        string  `json:"font,omitempty"` // 字体覆盖，空表示使用后端默认字体
	Title       string  `json:"title,omitempty"`
	Subject     string  `json:"subject,omitempty"`
}

// A4Portrait 返回固定的 A4 竖版页面与边距（上 4.5cm、下 1cm、左 2.5cm、右 1cm）。
func A4Portrait(lang, font string) PageSetup {
	return PageSetup{
		Lang:        lang,
		Size:        "A4",
		Orientation: "portrait",
		Width:       A4Width,
		Height:      A4Height,
		Margin: Margin{
			Top:    Pt(4.5),
			Bottom: Pt(1),
			Left:   Pt(2.5),
			Right:  Pt(1),
		},
		Font: font,
	}
}
