package compose

import (
	"image"
	"math"

	"gloco/internal/settings"
)

// 浏览器边框尺寸（CSS 像素）
const (
	FrameHeight   = 28
	frameDotSize  = 12
	frameDotGap   = 8
	frameDotInset = 12 // 第一个圆点圆心距左边
	frameFontSize = 12
)

// PreviewScale 交互预览使用的固定倍率
const PreviewScale = 2

// ExportScale 导出倍率；高质量导出至少 2x
func ExportScale(s settings.Style, highQuality bool) int {
	scale := s.Normalize().ExportScale
	if highQuality {
		scale = max(scale, 2)
	}
	return scale
}

// Layout 合成布局，全部为画布像素
type Layout struct {
	Scale       int
	Canvas      image.Point     // 画布尺寸
	Inner       image.Rectangle // 截图裁剪区域（内圆角）
	Frame       image.Rectangle // 浏览器标题栏，未启用时为空
	Image       image.Rectangle // 截图绘制位置
	OuterRadius float64
	InnerRadius float64
}

// ComputeLayout 计算布局；width/height 为截图 CSS 尺寸
// 画布尺寸 = (width + 2·padding, height + 2·padding) · scale
func ComputeLayout(width, height int, s settings.Style, scale int) Layout {
	s = s.Normalize()
	if scale < 1 {
		scale = 1
	}

	p := s.Padding * scale
	w, h := width*scale, height*scale

	l := Layout{
		Scale:  scale,
		Canvas: image.Pt(w+2*p, h+2*p),
		Inner:  image.Rect(p, p, p+w, p+h),
	}
	l.Image = l.Inner

	if s.BrowserFrame {
		fh := FrameHeight * scale
		l.Frame = image.Rect(p, p, p+w, p+fh)
		l.Image = l.Image.Add(image.Pt(0, fh))
	}

	l.OuterRadius = clampRadius(float64(s.OuterRadius*scale), l.Canvas.X, l.Canvas.Y)
	l.InnerRadius = clampRadius(float64(s.InnerRadius*scale), w, h)
	return l
}

// clampRadius 圆角半径不超过短边的一半
func clampRadius(r float64, w, h int) float64 {
	return math.Max(0, math.Min(r, float64(min(w, h))/2))
}
