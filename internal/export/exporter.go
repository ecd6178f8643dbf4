package export

import (
	"errors"
	"fmt"
	"image"

	"github.com/pterm/pterm"

	"gloco/internal/clipboard"
)

// ErrExportFailed 复制或保存失败；可重试，不影响当前会话
var ErrExportFailed = errors.New("导出失败")

// Exporter 把合成结果编码后写入文件或剪贴板
type Exporter struct {
	downloader *Downloader
	clipboard  clipboard.Clipboard
	format     string
}

// NewExporter 创建导出器；format 为空时使用 PNG
func NewExporter(d *Downloader, cb clipboard.Clipboard, format string) *Exporter {
	if format == "" {
		format = FormatPNG
	}
	return &Exporter{downloader: d, clipboard: cb, format: format}
}

// Downloader 文件下载器
func (e *Exporter) Downloader() *Downloader {
	return e.downloader
}

// ToBlob PNG 编码
func (e *Exporter) ToBlob(img image.Image) ([]byte, error) {
	data, err := Encode(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return data, nil
}

// Download 编码并保存到下载目录，返回文件路径
func (e *Exporter) Download(img image.Image, filename string) (string, error) {
	if e.downloader == nil {
		return "", fmt.Errorf("%w: 未配置保存目录", ErrExportFailed)
	}

	data, err := EncodeAs(img, e.format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	path, err := e.downloader.Save(data, filename, e.format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	pterm.Debug.Printfln("已保存 %s (%d 字节)", path, len(data))
	return path, nil
}

// CopyToClipboard 以 PNG 写入剪贴板
func (e *Exporter) CopyToClipboard(img image.Image) error {
	if e.clipboard == nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, clipboard.ErrUnavailable)
	}

	data, err := e.ToBlob(img)
	if err != nil {
		return err
	}

	if err := e.clipboard.WriteImage(data); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}
