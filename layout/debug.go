package layout

import (
	"encoding/json"
	"io"
)

// WriteDebugJSON 将布局结果以缩进 JSON 写出，便于核对坐标。图片数据不输出。
func WriteDebugJSON(res *Result, w io.Writer) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
