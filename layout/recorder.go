package layout

import (
	"fmt"
	"io"
)

// Recorder is an in-memory Backend and Surface that records every drawing
// operation instead of producing a PDF. It backs the debug JSON output and tests.
type Recorder struct {
	result   Result
	fontSize float64
	phase    Phase
	pen      *point
	segments []Line
	sink     io.Writer
	flushed  bool
}

type point struct{ x, y float64 }

var (
	_ Backend     = (*Recorder)(nil)
	_ Surface     = (*Recorder)(nil)
	_ PhaseMarker = (*Recorder)(nil)
)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// NewSurface 实现 Backend：每次调用都会清空之前的记录并复用自身作为绘制面。
func (r *Recorder) NewSurface(setup PageSetup) (Surface, error) {
	*r = Recorder{result: Result{Page: setup}}
	return r, nil
}

// Result returns the recorded operations.
func (r *Recorder) Result() *Result { return &r.result }

// Ops returns the recorded operations, optionally filtered by phase.
func (r *Recorder) Ops(phases ...Phase) []Op {
	if len(phases) == 0 {
		return r.result.Ops
	}
	var out []Op
	for _, op := range r.result.Ops {
		for _, p := range phases {
			if op.Phase == p {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// Texts 返回指定阶段（为空时为全部阶段）的文本记录。
func (r *Recorder) Texts(phases ...Phase) []TextBox {
	var out []TextBox
	for _, op := range r.Ops(phases...) {
		if op.Kind == OpText {
			out = append(out, *op.Text)
		}
	}
	return out
}

func (r *Recorder) MarkPhase(p Phase) { r.phase = p }

func (r *Recorder) SetFontSize(size float64) { r.fontSize = size }

func (r *Recorder) DrawText(value string, x, y float64, opts TextOptions) {
	r.push(Op{Kind: OpText, Text: &TextBox{
		Content:  value,
		X:        x,
		Y:        y,
		FontSize: r.fontSize,
		Align:    opts.Align,
		Width:    opts.Width,
	}})
}

func (r *Recorder) DrawImage(ref string, x, y float64, opts ImageOptions) error {
	if ref == "" {
		return fmt.Errorf("图片引用为空")
	}
	r.push(Op{Kind: OpImage, Image: &ImageBox{Ref: ref, X: x, Y: y, Width: opts.Width}})
	return nil
}

func (r *Recorder) MoveTo(x, y float64) { r.pen = &point{x, y} }

func (r *Recorder) LineTo(x, y float64) {
	if r.pen == nil {
		r.pen = &point{x, y}
		return
	}
	r.segments = append(r.segments, Line{X1: r.pen.x, Y1: r.pen.y, X2: x, Y2: y})
	r.pen = &point{x, y}
}

// Stroke 将当前路径的每一段记录为一条线，并清空路径。
func (r *Recorder) Stroke() {
	for i := range r.segments {
		ln := r.segments[i]
		r.push(Op{Kind: OpLine, Line: &ln})
	}
	r.segments = nil
	r.pen = nil
}

func (r *Recorder) DrawRect(x, y, w, h float64, style StrokeStyle) {
	r.push(Op{Kind: OpRect, Rect: &Rect{X: x, Y: y, Width: w, Height: h, Stroke: style}})
}

func (r *Recorder) Pipe(w io.Writer) { r.sink = w }

func (r *Recorder) FlushPages() { r.flushed = true }

func (r *Recorder) End() error {
	if r.result.Ended {
		return ErrEnded
	}
	r.result.Ended = true
	return nil
}

func (r *Recorder) push(op Op) {
	op.Phase = r.phase
	r.result.Ops = append(r.result.Ops, op)
}
