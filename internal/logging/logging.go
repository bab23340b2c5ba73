package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger writing to w (stderr when nil). format is "json" or "text".
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	logg := logrus.New()
	if w == nil {
		w = os.Stderr
	}
	logg.SetOutput(w)

	switch format {
	case "json":
		logg.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logg.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("未知的日志格式 %q（支持 json、text）", format)
	}

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("日志级别无效: %w", err)
	}
	logg.SetLevel(lvl)
	return logg, nil
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
