package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MarshalDebug 将绘制记录编码为缩进 JSON。
func MarshalDebug(res *Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("绘制记录为空")
	}
	return json.MarshalIndent(res, "", "  ")
}

// WriteDebugJSON 将绘制记录写入 path（自动创建目录），便于与基准坐标比对。
func WriteDebugJSON(res *Result, path string) error {
	data, err := MarshalDebug(res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
