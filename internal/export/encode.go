package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
)

// 导出格式
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// Encode PNG 编码（无损）
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNG 编码失败: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP 无损 WebP 编码
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("WebP 编码失败: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeAs 按格式编码
func EncodeAs(img image.Image, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatWebP:
		return EncodeWebP(img)
	case FormatPNG, "":
		return Encode(img)
	default:
		return nil, fmt.Errorf("不支持的格式: %s", format)
	}
}

// DecodeConfig 读取编码结果的像素尺寸
func DecodeConfig(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if wc, werr := webp.DecodeConfig(bytes.NewReader(data)); werr == nil {
			return wc.Width, wc.Height, nil
		}
		return 0, 0, fmt.Errorf("无法解析图片: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
