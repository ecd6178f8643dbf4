package capture

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultMinPixelRatio 输出像素比下限，保证低分屏也能导出清晰图片
const DefaultMinPixelRatio = 2.0

// Cropped 裁剪结果；Width/Height 为 CSS 像素，Image 按 PixelRatio 放大
type Cropped struct {
	Image      *image.NRGBA
	Width      int
	Height     int
	PixelRatio float64
}

// Cropper 从整屏截图中裁出选区
type Cropper struct {
	minPixelRatio float64
}

// NewCropper 创建裁剪器；minPixelRatio <= 0 时使用默认值
func NewCropper(minPixelRatio float64) *Cropper {
	if minPixelRatio <= 0 {
		minPixelRatio = DefaultMinPixelRatio
	}
	return &Cropper{minPixelRatio: minPixelRatio}
}

// PixelRatio 输出像素比 r = max(devicePixelRatio, 下限)
func (c *Cropper) PixelRatio(vp Viewport) float64 {
	return math.Max(vp.DevicePixelRatio, c.minPixelRatio)
}

// Crop 裁剪选区，输出尺寸为 round(w·r) × round(h·r)
func (c *Cropper) Crop(shot *Capture, rect SelectionRect) (*Cropped, error) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSelection, rect.Width, rect.Height)
	}
	if shot == nil || shot.Image == nil {
		return nil, fmt.Errorf("%w: 没有截图", ErrInvalidSelection)
	}

	bounds := shot.Image.Bounds()
	vp := shot.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp.Width, vp.Height = bounds.Dx(), bounds.Dy()
	}

	// CSS 坐标 -> 截图原生像素坐标
	scaleX := float64(bounds.Dx()) / float64(vp.Width)
	scaleY := float64(bounds.Dy()) / float64(vp.Height)

	r := c.PixelRatio(vp)
	dstW := round(float64(rect.Width) * r)
	dstH := round(float64(rect.Height) * r)

	sx := round(float64(rect.X) * scaleX)
	sy := round(float64(rect.Y) * scaleY)
	src := image.Rect(sx, sy, sx+round(float64(rect.Width)*scaleX), sy+round(float64(rect.Height)*scaleY)).
		Add(bounds.Min)

	visible := src.Intersect(bounds)
	if visible.Empty() {
		return nil, fmt.Errorf("%w: 选区 %s 不在截图范围内", ErrInvalidSelection, rect)
	}

	var out *image.NRGBA
	if visible == src {
		out = imaging.Resize(imaging.Crop(shot.Image, src), dstW, dstH, imaging.CatmullRom)
	} else {
		// 选区超出截图时，超出部分保持透明，可见部分按比例放到对应位置
		fx := float64(dstW) / float64(src.Dx())
		fy := float64(dstH) / float64(src.Dy())
		dst := image.Rect(
			round(float64(visible.Min.X-src.Min.X)*fx),
			round(float64(visible.Min.Y-src.Min.Y)*fy),
			round(float64(visible.Max.X-src.Min.X)*fx),
			round(float64(visible.Max.Y-src.Min.Y)*fy),
		)
		out = image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
		if !dst.Empty() {
			part := imaging.Resize(imaging.Crop(shot.Image, visible), dst.Dx(), dst.Dy(), imaging.CatmullRom)
			out = imaging.Paste(out, part, dst.Min)
		}
	}

	return &Cropped{
		Image:      out,
		Width:      rect.Width,
		Height:     rect.Height,
		PixelRatio: r,
	}, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
