package layout

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// 信头与页脚的固定位置（cm），对应 DIN 5008 风格的版式。
const (
	returnTextY     = 5.916
	addressTopY     = 6.0
	senderX         = 12.5
	logoX           = 12.5
	logoY           = 2.0
	logoWidth       = 6.0
	subjectY        = 10.346
	subjectGapLines = 2

	footerRuleY  = 26.5
	footerRuleX1 = 1.0
	footerRuleX2 = 20.0
	footerTextY  = 27.0

	// 调试边框：收件人窗口与发件人信息栏
	receiverBoxX = 2.0
	receiverBoxY = 5.7
	receiverBoxW = 8.5
	receiverBoxH = 4.0
	senderBoxW   = 7.5
	borderWidth  = 0.5
)

var borderColor = Color{R: 255, G: 0, B: 0}

// Document is one rendered letter, invoice or delivery note. All phases have
// run when the constructor returns; End flushes the surface to the output.
type Document struct {
	kind     Kind
	setup    PageSetup
	metrics  Metrics
	surface  Surface
	closer   io.Closer
	path     string // 由引擎创建的输出文件，出错时删除
	cursor   float64
	overlaps bool
	ended    bool
	log      *logrus.Entry
}

// Render validates cfg and renders it with the content renderer of its kind.
func Render(cfg Config, opts Options) (*Document, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: 配置为空", ErrPrecondition)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDocument(cfg.Kind(), cfg.Header(), cfg.ContentRenderer(), opts)
}

// NewLetter renders a plain letter.
func NewLetter(cfg *LetterConfig, opts Options) (*Document, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: 信件配置为空", ErrPrecondition)
	}
	return Render(cfg, opts)
}

// NewInvoice renders an invoice. The configuration needs at least one product.
func NewInvoice(cfg *InvoiceConfig, opts Options) (*Document, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: 发票配置为空", ErrPrecondition)
	}
	return Render(cfg, opts)
}

// NewDeliveryNote renders a delivery note.
func NewDeliveryNote(cfg *DeliveryNoteConfig, opts Options) (*Document, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: 送货单配置为空", ErrPrecondition)
	}
	return Render(cfg, opts)
}

// New renders head and footer from head and delegates the content phase to content.
func New(head *Head, content ContentRenderer, opts Options) (*Document, error) {
	if head == nil || content == nil {
		return nil, fmt.Errorf("%w: 信头或正文渲染器为空", ErrPrecondition)
	}
	if err := validateStruct(head); err != nil {
		return nil, err
	}
	return newDocument(KindLetter, head, content, opts)
}

func newDocument(kind Kind, head *Head, content ContentRenderer, opts Options) (*Document, error) {
	opts = opts.withDefaults(kind)
	if opts.Backend == nil {
		return nil, ErrMissingBackend
	}
	// 前置条件必须在任何绘制之前检查
	if pf, ok := content.(Preflighter); ok {
		if err := pf.Preflight(); err != nil {
			return nil, err
		}
	}

	setup := A4Portrait(opts.Lang, opts.Font)
	setup.Title = head.Subject
	setup.Subject = string(kind)

	d := &Document{
		kind:    kind,
		setup:   setup,
		metrics: DefaultMetrics(),
		log:     opts.Logger.WithFields(logrus.Fields{"module": "layout", "kind": kind}),
	}

	surface, err := opts.Backend.NewSurface(setup)
	if err != nil {
		return nil, backendError("创建绘制面", err)
	}
	d.surface = surface

	sink := opts.Writer
	if sink == nil {
		f, err := os.Create(opts.Path)
		if err != nil {
			return nil, backendError("创建输出文件", err)
		}
		sink, d.closer, d.path = f, f, opts.Path
	}
	d.surface.Pipe(sink)

	if err := d.render(head, content, opts.StrictFooter); err != nil {
		d.abort()
		return nil, err
	}
	return d, nil
}

func (d *Document) render(head *Head, content ContentRenderer, strict bool) error {
	if head.ShowBorders {
		d.mark(PhaseBorders)
		d.drawBorders()
	}

	d.mark(PhaseHead)
	cursor, err := d.writeHead(head)
	if err != nil {
		return err
	}

	d.mark(PhaseContent)
	start := cursor
	cursor, err = content.RenderContent(d.surface, d.metrics, cursor)
	if err != nil {
		return err
	}
	d.cursor = cursor
	d.log.WithFields(logrus.Fields{"start": start, "end": cursor}).Debug("正文绘制完成")

	if head.HasFooter() && cursor > Pt(footerRuleY) {
		d.overlaps = true
		d.log.WithFields(logrus.Fields{"cursor": cursor, "footerY": Pt(footerRuleY)}).Warn("正文越过页脚分隔线")
		if strict {
			return fmt.Errorf("%w: 正文结束于 %.2fpt，页脚分隔线位于 %.2fpt", ErrFooterOverlap, cursor, Pt(footerRuleY))
		}
	}

	d.mark(PhaseFooter)
	d.writeFooter(head)
	return nil
}

// drawBorders 描出收件人窗口和发件人信息栏，仅用于调试坐标网格，不影响游标。
func (d *Document) drawBorders() {
	style := StrokeStyle{Width: borderWidth, Color: borderColor}
	d.surface.DrawRect(Pt(receiverBoxX), Pt(receiverBoxY), Pt(receiverBoxW), Pt(receiverBoxH), style)
	d.surface.DrawRect(Pt(senderX), Pt(addressTopY), Pt(senderBoxW), MaxSenderLines*d.metrics.LineHeight, style)
}

// writeHead 绘制寄件人回执行、收件人、发件人信息、logo 与主题，返回正文起始游标。
func (d *Document) writeHead(head *Head) (float64, error) {
	m, s := d.metrics, d.surface

	s.SetFontSize(m.FontSizeS)
	s.DrawText(head.ReturnText, m.PadLeft, Pt(returnTextY), TextOptions{})

	for i, line := range head.Receiver {
		s.SetFontSize(m.FontSize)
		s.DrawText(line, m.PadLeft, Pt(addressTopY)+m.LineHeightS+float64(i)*m.LineHeight, TextOptions{})
	}

	for i, line := range head.Sender {
		s.SetFontSize(m.FontSize)
		s.DrawText(line, Pt(senderX), Pt(addressTopY)+float64(i)*m.LineHeight, TextOptions{})
	}

	if head.HasLogo() {
		if err := s.DrawImage(head.Logo, Pt(logoX), Pt(logoY), ImageOptions{Width: Pt(logoWidth)}); err != nil {
			return 0, backendError("绘制 logo "+head.Logo, err)
		}
	}

	s.SetFontSize(m.FontSizeL)
	s.DrawText(head.Subject, m.PadLeft, Pt(subjectY), TextOptions{})

	return Pt(subjectY) + m.LineHeightL*subjectGapLines, nil
}

// writeFooter 在固定位置绘制分隔线与居中的页脚行；没有页脚时不绘制任何内容。
func (d *Document) writeFooter(head *Head) {
	if !head.HasFooter() {
		return
	}
	m, s := d.metrics, d.surface

	s.MoveTo(Pt(footerRuleX1), Pt(footerRuleY))
	s.LineTo(Pt(footerRuleX2), Pt(footerRuleY))
	s.Stroke()

	width := d.setup.Width - d.setup.Margin.Right - m.PadLeft
	for i, line := range head.Footer {
		s.SetFontSize(m.FontSizeS)
		s.DrawText(line, m.PadLeft, Pt(footerTextY)+float64(i)*m.LineHeightS, TextOptions{Align: AlignCenter, Width: width})
	}
}

func (d *Document) mark(p Phase) {
	if pm, ok := d.surface.(PhaseMarker); ok {
		pm.MarkPhase(p)
	}
	d.log.WithField("phase", p).Debug("开始绘制阶段")
}

// abort 关闭并删除由引擎创建的半成品文件。
func (d *Document) abort() {
	if d.closer == nil {
		return
	}
	_ = d.closer.Close()
	if d.path != "" {
		_ = os.Remove(d.path)
	}
	d.closer = nil
}

// End flushes the surface and closes the output. It must be called exactly once.
func (d *Document) End() error {
	if d.ended {
		return ErrEnded
	}
	d.ended = true
	d.surface.FlushPages()
	err := d.surface.End()
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		if errors.Is(err, ErrBackend) {
			return err
		}
		return backendError("结束文档", err)
	}
	d.log.Debug("文档已输出")
	return nil
}

// Kind returns the document type.
func (d *Document) Kind() Kind { return d.kind }

// Page returns the page geometry used for this document.
func (d *Document) Page() PageSetup { return d.setup }

// Cursor returns the vertical position below the content phase.
func (d *Document) Cursor() float64 { return d.cursor }

// Overlaps reports whether the content phase ran past the footer separator.
func (d *Document) Overlaps() bool { return d.overlaps }
