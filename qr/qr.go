// Package qr 将文本编码为二维码 PNG。
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder 把载荷编码为可直接嵌入 PDF 的图片字节。
type Encoder interface {
	Encode(payload string) ([]byte, error)
}

// EncodingError 表示二维码无法生成（载荷为空或超出容量）。
type EncodingError struct {
	Payload string
	Err     error
}

func (e *EncodingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("二维码编码失败: %q", e.Payload)
	}
	return fmt.Sprintf("二维码编码失败: %q: %v", e.Payload, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// PNGEncoder 使用 go-qrcode 生成 PNG。Size 为边长像素，<= 0 时取 256。
type PNGEncoder struct {
	Level qrcode.RecoveryLevel
	Size  int
}

// NewPNGEncoder 返回中等纠错级别、256 像素的编码器。
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{Level: qrcode.Medium, Size: 256}
}

// Encode 实现 Encoder。
func (e *PNGEncoder) Encode(payload string) ([]byte, error) {
	if payload == "" {
		return nil, &EncodingError{Payload: payload, Err: fmt.Errorf("内容为空")}
	}
	size := e.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, e.Level, size)
	if err != nil {
		return nil, &EncodingError{Payload: payload, Err: err}
	}
	return png, nil
}
