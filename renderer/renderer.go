package renderer

import "github.com/ByLCY/posslip/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回完整的文件字节；出错时不返回部分结果。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Surface 同时提供测量与绘制：测量与绘制必须使用同一套字体度量，排版结果才与输出一致。
type Surface interface {
	Renderer
	layout.Typesetter
}
