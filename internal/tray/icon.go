package tray

import (
	"encoding/binary"
	"image"
	"image/draw"
	"runtime"

	"github.com/pterm/pterm"

	"gloco/internal/capture"
	"gloco/internal/compose"
	"gloco/internal/export"
	"gloco/internal/settings"
)

const iconSize = 16

// getIcon 托盘图标：Windows 需要 ICO，其他平台使用 PNG
func getIcon() []byte {
	img := renderIcon()
	if runtime.GOOS == "windows" {
		return encodeICO(img)
	}
	data, err := export.Encode(img)
	if err != nil {
		pterm.Debug.Printfln("图标编码失败: %v", err)
		return encodeICO(img)
	}
	return data
}

// renderIcon 用合成器画一张迷你卡片：渐变背景 + 白色截图
func renderIcon() *image.RGBA {
	inner := 8
	white := image.NewNRGBA(image.Rect(0, 0, inner, inner))
	draw.Draw(white, white.Bounds(), image.White, image.Point{}, draw.Src)

	s := settings.Defaults()
	s.BackgroundMode = settings.BackgroundGradient
	s.Gradient = "ocean"
	s.Padding = (iconSize - inner) / 2
	s.OuterRadius = 5
	s.InnerRadius = 2

	img, err := compose.NewCompositor().Compose(
		&capture.Cropped{Image: white, Width: inner, Height: inner, PixelRatio: 1}, s, 1)
	if err != nil {
		pterm.Debug.Printfln("图标合成失败: %v", err)
		return image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	}
	return img
}

// encodeICO 32 位 BMP 格式的单图 ICO
func encodeICO(img *image.RGBA) []byte {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	pixelSize := width * height * 4
	maskStride := ((width + 31) / 32) * 4
	maskSize := maskStride * height
	const headerSize, entrySize, bmpHeaderSize = 6, 16, 40
	imageSize := bmpHeaderSize + pixelSize + maskSize

	buf := make([]byte, headerSize+entrySize+imageSize)
	le := binary.LittleEndian

	// ICONDIR
	le.PutUint16(buf[2:], 1) // Type: 1 = ICO
	le.PutUint16(buf[4:], 1) // Count

	// ICONDIRENTRY
	e := buf[headerSize:]
	e[0], e[1] = byte(width), byte(height)
	le.PutUint16(e[4:], 1)  // Planes
	le.PutUint16(e[6:], 32) // Bits per pixel
	le.PutUint32(e[8:], uint32(imageSize))
	le.PutUint32(e[12:], headerSize+entrySize)

	// BITMAPINFOHEADER，高度翻倍（XOR + AND 掩码）
	h := buf[headerSize+entrySize:]
	le.PutUint32(h[0:], bmpHeaderSize)
	le.PutUint32(h[4:], uint32(width))
	le.PutUint32(h[8:], uint32(height*2))
	le.PutUint16(h[12:], 1)
	le.PutUint16(h[14:], 32)

	// 像素数据 (BGRA，从下往上)
	pixels := h[bmpHeaderSize:]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			idx := ((height-1-y)*width + x) * 4
			pixels[idx+0] = c.B
			pixels[idx+1] = c.G
			pixels[idx+2] = c.R
			pixels[idx+3] = c.A
		}
	}
	// AND 掩码全 0，透明度由 alpha 通道决定
	return buf
}
