package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// FileCapturer 从已有图片文件读取"截图"，用于离线合成
type FileCapturer struct {
	path     string
	viewport Viewport
}

// NewFileCapturer 创建文件截图器
// viewport 未给出尺寸时按图片尺寸 / 像素比推算（像素比默认 1）
func NewFileCapturer(path string, viewport Viewport) *FileCapturer {
	return &FileCapturer{path: path, viewport: viewport}
}

// Capture 读取并解码图片
func (c *FileCapturer) Capture(ctx context.Context) (*Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	img, err := Decode(data, filepath.Ext(c.path))
	if err != nil {
		return nil, err
	}

	vp := c.viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		b := img.Bounds()
		dpr := vp.DevicePixelRatio
		if dpr <= 0 {
			dpr = 1
		}
		vp = Viewport{
			Width:            int(math.Round(float64(b.Dx()) / dpr)),
			Height:           int(math.Round(float64(b.Dy()) / dpr)),
			DevicePixelRatio: dpr,
		}
	}
	if vp.DevicePixelRatio <= 0 {
		vp.DevicePixelRatio = float64(img.Bounds().Dx()) / float64(vp.Width)
	}

	return &Capture{Image: img, Viewport: vp}, nil
}

// Decode 解码 PNG/JPEG/WebP 等格式的截图数据
func Decode(data []byte, ext string) (image.Image, error) {
	if strings.EqualFold(ext, ".webp") {
		img, err := webp.Decode(bytes.NewReader(data))
		if err == nil {
			return img, nil
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	// 扩展名不可靠时再尝试一次 WebP
	if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return img, nil
	}

	return nil, fmt.Errorf("%w: 无法解码图片: %v", ErrCaptureFailed, err)
}
