package layout

// 该文件定义绘制记录的数据结构，供 Recorder、测试与调试 JSON 共用。
// 所有坐标与尺寸单位均为 pt。

// Result 保存一份文档按顺序发出的全部绘制操作。
type Result struct {
	Page  PageSetup `json:"page"`
	Ops   []Op      `json:"ops"`
	Ended bool      `json:"ended"`
}

// OpKind 区分绘制操作类型。
type OpKind string

const (
	OpText  OpKind = "text"
	OpImage OpKind = "image"
	OpLine  OpKind = "line"
	OpRect  OpKind = "rect"
)

// Op 是一次绘制操作，按 Kind 只填充其中一个指针字段。
type Op struct {
	Kind  OpKind    `json:"kind"`
	Phase Phase     `json:"phase,omitempty"`
	Text  *TextBox  `json:"text,omitempty"`
	Image *ImageBox `json:"image,omitempty"`
	Line  *Line     `json:"line,omitempty"`
	Rect  *Rect     `json:"rect,omitempty"`
}

// Y 返回操作的纵向起点，便于检查游标单调性。
func (o Op) Y() float64 {
	switch o.Kind {
	case OpText:
		return o.Text.Y
	case OpImage:
		return o.Image.Y
	case OpLine:
		return o.Line.Y1
	case OpRect:
		return o.Rect.Y
	}
	return 0
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// TextBox 表示一行已定位的文本。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Align    Align   `json:"align,omitempty"`
	Width    float64 `json:"width,omitempty"`
}

// ImageBox 描述图片位置与宽度。
type ImageBox struct {
	Ref   string  `json:"ref"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Line 表示一条已描边的线段。
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Rect 表示一个仅描边的矩形。
type Rect struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Stroke StrokeStyle `json:"stroke"`
}
