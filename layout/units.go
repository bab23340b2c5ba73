package layout

// 本文件定义厘米与 PDF 点（pt）之间的换算。
// 所有版面坐标都以厘米给出，经 Pt 换算后交给绘制后端。

// 换算系数：1cm 先按 96dpi 记为 37.7952755906px，再缩放到 72 单位/英寸的页面。
// 两个常量必须按原样依次相乘，不能合并或四舍五入（例如 28.35），否则坐标无法与基准输出逐位一致。
const (
	pxPerCm  = 37.7952755906
	ptPerPx  = 0.74999943307122
	PtToMm   = 25.4 / 72
	MmToPt   = 1.0 / PtToMm
	A4Width  = 595.28
	A4Height = 841.89
)

// Pt converts centimeters to points.
func Pt(cm float64) float64 {
	return (cm * pxPerCm) * ptPerPx
}

// Cm 是 Pt 的逆运算，仅用于调试输出。
func Cm(pt float64) float64 {
	return pt / ptPerPx / pxPerCm
}
