package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
)

// Prefix 标记内置字体的 src 写法，例如 "builtin:gomono"。
const Prefix = "builtin:"

// 内置字体名。
const (
	Mono     = "gomono"
	MonoBold = "gomono-bold"
)

var builtin = map[string][]byte{
	Mono:     gomono.TTF,
	MonoBold: gomonobold.TTF,
}

// IsBuiltin 报告 src 是否指向内置字体。
func IsBuiltin(src string) bool { return strings.HasPrefix(src, Prefix) }

// Load 返回内置字体的字节数据，name 可写为 "builtin:gomono" 或直接 "gomono"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, Prefix))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在", name)
	}
	return data, nil
}

// Fallback 返回与 style 对应的内置等宽字体，用于字体文件缺失时替代。
func Fallback(style string) []byte {
	if strings.EqualFold(style, "bold") {
		return gomonobold.TTF
	}
	return gomono.TTF
}
