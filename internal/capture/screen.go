package capture

import (
	"context"
	"fmt"

	"github.com/kbinani/screenshot"
)

// ScreenCapturer 截取指定显示器
type ScreenCapturer struct {
	display int
}

// NewScreenCapturer 创建显示器截图器
func NewScreenCapturer(display int) *ScreenCapturer {
	return &ScreenCapturer{display: display}
}

// Capture 全屏截图；视口取显示器的逻辑尺寸
func (c *ScreenCapturer) Capture(ctx context.Context) (*Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: 没有可用的显示器", ErrCaptureFailed)
	}
	if c.display < 0 || c.display >= n {
		return nil, fmt.Errorf("%w: 显示器 %d 不存在（共 %d 个）", ErrCaptureFailed, c.display, n)
	}

	bounds := screenshot.GetDisplayBounds(c.display)
	img, err := screenshot.CaptureDisplay(c.display)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	return &Capture{
		Image:    img,
		Viewport: viewportFor(img.Bounds().Dx(), bounds.Dx(), bounds.Dy()),
	}, nil
}

// viewportFor 根据截图宽度和显示器逻辑尺寸推算设备像素比
func viewportFor(rasterWidth, width, height int) Viewport {
	dpr := 1.0
	if width > 0 && rasterWidth > width {
		dpr = float64(rasterWidth) / float64(width)
	}
	return Viewport{Width: width, Height: height, DevicePixelRatio: dpr}
}
