package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gloco/internal/capture"
	"gloco/internal/settings"
)

var red = color.RGBA{255, 0, 0, 255}

// solidCrop 纯红裁剪结果，栅格尺寸为 CSS 尺寸 × ratio
func solidCrop(w, h, ratio int) *capture.Cropped {
	img := image.NewNRGBA(image.Rect(0, 0, w*ratio, h*ratio))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	return &capture.Cropped{Image: img, Width: w, Height: h, PixelRatio: float64(ratio)}
}

func solidStyle(hex string) settings.Style {
	s := settings.Defaults()
	s.BackgroundMode = settings.BackgroundSolid
	s.BackgroundColor = hex
	return s
}

func TestComposeSolidScenario(t *testing.T) {
	out, err := NewCompositor().Compose(solidCrop(400, 300, 1), solidStyle("#ff5533"), 1)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 460, 360), out.Bounds())
	// 外圆角以外透明
	assert.Equal(t, uint8(0), out.RGBAAt(0, 0).A)
	// 内边距区域为背景色
	assert.Equal(t, color.RGBA{0xff, 0x55, 0x33, 0xff}, out.RGBAAt(20, 20))
	// 截图偏移 padding 绘制
	assert.Equal(t, red, out.RGBAAt(230, 180))
	assert.Equal(t, red, out.RGBAAt(100, 40))
	// 截图右下方仍是背景
	assert.Equal(t, color.RGBA{0xff, 0x55, 0x33, 0xff}, out.RGBAAt(445, 345))
}

func TestComposeCanvasSize(t *testing.T) {
	c := NewCompositor()
	for _, padding := range []int{0, 30, 64} {
		for _, scale := range []int{1, 2, 3} {
			s := solidStyle("#123456")
			s.Padding = padding
			out, err := c.Compose(solidCrop(50, 40, 2), s, scale)
			require.NoError(t, err)
			assert.Equal(t, (50+2*padding)*scale, out.Bounds().Dx(), "padding=%d scale=%d", padding, scale)
			assert.Equal(t, (40+2*padding)*scale, out.Bounds().Dy(), "padding=%d scale=%d", padding, scale)
		}
	}
}

func TestComposeResamplesToScale(t *testing.T) {
	out, err := NewCompositor().Compose(solidCrop(100, 80, 2), solidStyle("#000000"), 3)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 480, 420), out.Bounds())
	c := out.RGBAAt(240, 210)
	assert.InDelta(t, 255, int(c.R), 1)
	assert.InDelta(t, 0, int(c.G), 1)
}

func TestComposeDeterministic(t *testing.T) {
	s := settings.Defaults()
	s.BackgroundMode = settings.BackgroundGradient
	s.Gradient = "ocean"
	s.BrowserFrame = true
	s.Shadow.Enabled = true

	c := NewCompositor()
	encode := func() []byte {
		out, err := c.Compose(solidCrop(120, 90, 2), s, 2)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, out))
		return buf.Bytes()
	}

	assert.Equal(t, encode(), encode())
}

func TestComposeGradient(t *testing.T) {
	s := settings.Defaults()
	s.BackgroundMode = settings.BackgroundGradient
	s.Gradient = "forest"

	out, err := NewCompositor().Compose(solidCrop(400, 300, 1), s, 1)
	require.NoError(t, err)

	start, end := out.RGBAAt(20, 20), out.RGBAAt(440, 340)
	assert.NotEqual(t, start, end)
	// forest: #134e5e → #71b280，越往右下越亮
	assert.Less(t, start.G, end.G)
	assert.Equal(t, uint8(255), start.A)
}

func TestComposeBrowserFrame(t *testing.T) {
	s := solidStyle("#ff5533")
	s.BrowserFrame = true

	out, err := NewCompositor().Compose(solidCrop(400, 300, 1), s, 1)
	require.NoError(t, err)

	// 画布尺寸不变
	assert.Equal(t, image.Rect(0, 0, 460, 360), out.Bounds())
	// 标题栏占据截图顶部
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, out.RGBAAt(120, 34))
	// 第一个圆点
	assert.Equal(t, color.RGBA{0xff, 0x5f, 0x56, 0xff}, out.RGBAAt(42, 44))
	// 截图整体下移 28px，仍被内圆角区域裁剪
	assert.Equal(t, red, out.RGBAAt(230, 30+FrameHeight+2))
	assert.Equal(t, red, out.RGBAAt(230, 320))
	assert.Equal(t, color.RGBA{0xff, 0x55, 0x33, 0xff}, out.RGBAAt(230, 335))

	s.BrowserFrame = false
	plain, err := NewCompositor().Compose(solidCrop(400, 300, 1), s, 1)
	require.NoError(t, err)
	assert.Equal(t, red, plain.RGBAAt(120, 34))
}

func TestComposeShadow(t *testing.T) {
	s := solidStyle("#ffffff")
	s.Shadow = settings.Shadow{Enabled: true, Color: "#000000", OffsetY: 8, Blur: 0, Opacity: 1}

	out, err := NewCompositor().Compose(solidCrop(400, 300, 1), s, 1)
	require.NoError(t, err)

	// 截图下方 8px 内是阴影
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, out.RGBAAt(230, 334))
	// 阴影之外仍是背景
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, out.RGBAAt(230, 345))

	s.Shadow.Enabled = false
	plain, err := NewCompositor().Compose(solidCrop(400, 300, 1), s, 1)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, plain.RGBAAt(230, 334))
}

func TestComposeFailures(t *testing.T) {
	c := NewCompositor()

	_, err := c.Compose(nil, settings.Defaults(), 1)
	assert.True(t, errors.Is(err, ErrCompositionFailed))

	_, err = c.Compose(&capture.Cropped{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1))}, settings.Defaults(), 1)
	assert.True(t, errors.Is(err, ErrCompositionFailed))
}

func TestComputeLayout(t *testing.T) {
	s := settings.Defaults()
	s.Padding = 10
	s.OuterRadius = 500
	s.BrowserFrame = true

	l := ComputeLayout(100, 50, s, 2)
	assert.Equal(t, image.Pt(240, 140), l.Canvas)
	assert.Equal(t, image.Rect(20, 20, 220, 120), l.Inner)
	assert.Equal(t, image.Rect(20, 20, 220, 76), l.Frame)
	assert.Equal(t, image.Rect(20, 76, 220, 176), l.Image)
	assert.Equal(t, 70.0, l.OuterRadius)
	assert.Equal(t, 24.0, l.InnerRadius)
}

func TestExportScale(t *testing.T) {
	s := settings.Defaults()
	s.ExportScale = 1
	assert.Equal(t, 1, ExportScale(s, false))
	assert.Equal(t, 2, ExportScale(s, true))

	s.ExportScale = 3
	assert.Equal(t, 3, ExportScale(s, true))
}

func TestPaletteMatchesSettings(t *testing.T) {
	ids := make([]string, 0, len(gradients))
	for _, g := range Gradients() {
		ids = append(ids, g.ID)
		for _, stop := range g.Stops {
			_, err := ParseHexColor(stop.Color)
			assert.NoError(t, err)
		}
	}
	assert.Equal(t, settings.GradientIDs, ids)

	_, ok := LookupGradient("nope")
	assert.False(t, ok)

	c, err := ParseHexColor("#f00")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, c)
}
