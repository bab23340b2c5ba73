package layout

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options 配置一次文档渲染所需的依赖与输出目标。
type Options struct {
	// Lang 为文档语言代码，默认 "de"。
	Lang string
	// Path 为输出文件路径，默认按文档类型取 letter.pdf / invoice.pdf / deliveryNote.pdf。
	Path string
	// Writer 不为空时直接写入该目标，忽略 Path。
	Writer io.Writer
	// Font 为字体覆盖（TTF 路径或后端支持的内置名称），空表示后端默认字体。
	Font string
	// Backend 负责创建绘制面，必填。
	Backend Backend
	// Logger 为空时不输出日志。
	Logger *logrus.Logger
	// StrictFooter 为 true 时正文越过页脚分隔线会直接返回 ErrFooterOverlap。
	StrictFooter bool
}

func (o Options) withDefaults(kind Kind) Options {
	if o.Lang == "" {
		o.Lang = "de"
	}
	if o.Path == "" {
		o.Path = kind.DefaultPath()
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	return o
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
