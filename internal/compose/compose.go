package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/pterm/pterm"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"gloco/internal/capture"
	"gloco/internal/settings"
)

// ErrCompositionFailed 合成失败；只影响本次合成，上一次结果保持可见
var ErrCompositionFailed = errors.New("合成失败")

// URLLabel 浏览器边框地址栏占位文本
const URLLabel = "example.com"

var (
	frameBackdrop = mustColor("#f6f6f6")
	frameBar      = mustColor("#ffffff")
	frameLabel    = mustColor("#6e6e73")
	frameDots     = []color.NRGBA{mustColor("#ff5f56"), mustColor("#ffbd2e"), mustColor("#27ca3f")}
)

// Compositor 把裁剪后的截图合成到带背景的画布上
type Compositor struct {
	fontOnce sync.Once
	font     *opentype.Font
}

// NewCompositor 创建合成器
func NewCompositor() *Compositor {
	return &Compositor{}
}

// Compose 按固定顺序合成：外圆角裁剪 → 背景 → 阴影 → 内圆角裁剪 → 边框/截图 → 逐层还原
// 相同输入得到逐字节相同的输出
func (c *Compositor) Compose(cropped *capture.Cropped, s settings.Style, scale int) (out *image.RGBA, err error) {
	if cropped == nil || cropped.Image == nil {
		return nil, fmt.Errorf("%w: 没有裁剪结果", ErrCompositionFailed)
	}
	if cropped.Width <= 0 || cropped.Height <= 0 {
		return nil, fmt.Errorf("%w: 截图尺寸无效 %dx%d", ErrCompositionFailed, cropped.Width, cropped.Height)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrCompositionFailed, r)
		}
	}()

	s = s.Normalize()
	l := ComputeLayout(cropped.Width, cropped.Height, s, scale)

	fill, err := backgroundPattern(s, l)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(l.Canvas.X, l.Canvas.Y)
	w, h := float64(l.Canvas.X), float64(l.Canvas.Y)

	// 外圆角：整张卡片的轮廓
	dc.Push()
	roundedRect(dc, 0, 0, w, h, l.OuterRadius)
	dc.Clip()

	dc.SetFillStyle(fill)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if s.Shadow.Enabled {
		if err := drawShadow(dc, l, s.Shadow); err != nil {
			return nil, err
		}
	}

	// 内圆角：截图本身的圆角
	dc.Push()
	roundedRect(dc, float64(l.Inner.Min.X), float64(l.Inner.Min.Y),
		float64(l.Inner.Dx()), float64(l.Inner.Dy()), l.InnerRadius)
	dc.Clip()

	if s.BrowserFrame {
		c.drawFrame(dc, l)
	}
	dc.DrawImage(fit(cropped.Image, l.Image.Dx(), l.Image.Dy()), l.Image.Min.X, l.Image.Min.Y)

	dc.Pop()
	dc.Pop()

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("%w: 画布类型异常", ErrCompositionFailed)
	}
	return rgba, nil
}

func backgroundPattern(s settings.Style, l Layout) (gg.Pattern, error) {
	if s.BackgroundMode == settings.BackgroundGradient {
		g, ok := LookupGradient(s.Gradient)
		if !ok {
			return nil, fmt.Errorf("%w: 未知渐变 %q", ErrCompositionFailed, s.Gradient)
		}
		lg := gg.NewLinearGradient(0, 0, float64(l.Canvas.X), float64(l.Canvas.Y))
		for _, stop := range g.Stops {
			c, err := ParseHexColor(stop.Color)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCompositionFailed, err)
			}
			lg.AddColorStop(stop.Offset, c)
		}
		return lg, nil
	}

	c, err := ParseHexColor(s.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompositionFailed, err)
	}
	return gg.NewSolidPattern(c), nil
}

// drawShadow 在截图位置下方绘制模糊阴影（受外圆角裁剪）
func drawShadow(dc *gg.Context, l Layout, sh settings.Shadow) error {
	col, err := ParseHexColor(sh.Color)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompositionFailed, err)
	}
	col.A = uint8(math.Round(sh.Opacity * 255))
	if col.A == 0 {
		return nil
	}

	layer := gg.NewContext(l.Canvas.X, l.Canvas.Y)
	layer.SetColor(col)
	roundedRect(layer,
		float64(l.Inner.Min.X+sh.OffsetX*l.Scale), float64(l.Inner.Min.Y+sh.OffsetY*l.Scale),
		float64(l.Inner.Dx()), float64(l.Inner.Dy()), l.InnerRadius)
	layer.Fill()

	var img image.Image = layer.Image()
	if sh.Blur > 0 {
		img = imaging.Blur(img, float64(sh.Blur*l.Scale)/2)
	}
	dc.DrawImage(img, 0, 0)
	return nil
}

// drawFrame 绘制模拟浏览器标题栏：三个圆点 + 居中地址
func (c *Compositor) drawFrame(dc *gg.Context, l Layout) {
	s := float64(l.Scale)
	in := l.Inner

	dc.SetColor(frameBackdrop)
	dc.DrawRectangle(float64(in.Min.X), float64(in.Min.Y), float64(in.Dx()), float64(in.Dy()))
	dc.Fill()

	f := l.Frame
	dc.SetColor(frameBar)
	dc.DrawRectangle(float64(f.Min.X), float64(f.Min.Y), float64(f.Dx()), float64(f.Dy()))
	dc.Fill()

	cy := float64(f.Min.Y) + float64(f.Dy())/2
	for i, col := range frameDots {
		cx := float64(f.Min.X) + (frameDotInset+float64(i*(frameDotSize+frameDotGap)))*s
		dc.SetColor(col)
		dc.DrawCircle(cx, cy, frameDotSize*s/2)
		dc.Fill()
	}

	dc.SetFontFace(c.labelFace(frameFontSize * s))
	dc.SetColor(frameLabel)
	dc.DrawStringAnchored(URLLabel, float64(f.Min.X)+float64(f.Dx())/2, cy, 0.5, 0.5)
}

// labelFace 地址栏字体；内置字体解析失败时退回位图字体
func (c *Compositor) labelFace(size float64) font.Face {
	c.fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			pterm.Debug.Printfln("解析内置字体失败: %v", err)
			return
		}
		c.font = f
	})
	if c.font == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// roundedRect 添加圆角矩形路径
func roundedRect(dc *gg.Context, x, y, w, h, r float64) {
	if r <= 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	dc.DrawRoundedRectangle(x, y, w, h, r)
}

// fit 将截图缩放到绘制尺寸（尺寸一致时不重采样）
func fit(img *image.NRGBA, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.CatmullRom)
}
