// Package session 截图编辑会话：截图 → 选区 → 裁剪 → 合成，样式修改后只重新合成。
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pterm/pterm"

	"gloco/internal/capture"
	"gloco/internal/coalesce"
	"gloco/internal/compose"
	"gloco/internal/export"
	"gloco/internal/notify"
	"gloco/internal/settings"
)

// DefaultRenderDelay 连续编辑时重新合成的静默窗口
const DefaultRenderDelay = 100 * time.Millisecond

// ErrSessionClosed 会话已结束
var ErrSessionClosed = errors.New("会话已结束")

// Composer 合成接口
type Composer interface {
	Compose(cropped *capture.Cropped, s settings.Style, scale int) (*image.RGBA, error)
}

// Render 一次合成结果
type Render struct {
	Image *image.RGBA
	Style settings.Style
	Scale int
	Seq   uint64 // 本会话内第几次合成
}

// versioned 带版本号的样式；版本越大越新
type versioned struct {
	style   settings.Style
	version uint64
}

// Release 释放像素缓冲
func (r *Render) Release() {
	if r != nil {
		r.Image = nil
	}
}

// Session 一次截图编辑会话，缓存裁剪结果供反复合成
type Session struct {
	ID        ulid.ULID
	CreatedAt time.Time

	composer Composer
	exporter *export.Exporter
	notifier notify.Notifier
	saver    *settings.Saver
	renders  *coalesce.Coalescer[versioned]

	mu      sync.Mutex
	style   settings.Style
	version uint64 // 样式每次修改递增
	shown   uint64 // current 对应的样式版本
	cropped *capture.Cropped
	current *Render
	seq     uint64
	closed  bool
}

// Style 当前样式
func (s *Session) Style() settings.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Cropped 缓存的裁剪结果；会话结束后为 nil
func (s *Session) Cropped() *capture.Cropped {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cropped
}

// Current 最近一次成功的合成结果
func (s *Session) Current() *Render {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update 修改样式：立即生效，防抖保存，合并后重新合成
func (s *Session) Update(style settings.Style) (settings.Style, error) {
	style = style.Normalize()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return style, ErrSessionClosed
	}
	v := s.setStyle(style)
	s.mu.Unlock()

	s.saver.Submit(style)
	s.renders.Submit(v)
	return style, nil
}

// Override 只在本会话生效的样式，不写入存储
func (s *Session) Override(style settings.Style) error {
	style = style.Normalize()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	v := s.setStyle(style)
	s.mu.Unlock()

	s.renders.Submit(v)
	return nil
}

// setStyle 替换样式并递增版本，调用方持有 mu
func (s *Session) setStyle(style settings.Style) versioned {
	s.style = style
	s.version++
	return versioned{style: style, version: s.version}
}

// Render 按当前样式立即合成预览
func (s *Session) Render() (*Render, error) {
	s.mu.Lock()
	v := versioned{style: s.style, version: s.version}
	s.mu.Unlock()
	return s.render(v)
}

// render 合成并替换当前结果；失败时保留上一次结果
// 较新版本的结果已经可见时丢弃本次结果
func (s *Session) render(v versioned) (*Render, error) {
	style := v.style
	cropped := s.Cropped()
	if cropped == nil {
		return nil, ErrSessionClosed
	}

	img, err := s.composer.Compose(cropped, style, compose.PreviewScale)
	if err != nil {
		s.notice("合成失败", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if v.version < s.shown {
		pterm.Debug.Printfln("会话 %s: 丢弃过期的合成结果 (版本 %d < %d)", s.ID, v.version, s.shown)
		return s.current, nil
	}

	s.shown = v.version
	s.seq++
	r := &Render{Image: img, Style: style, Scale: compose.PreviewScale, Seq: s.seq}
	s.current.Release()
	s.current = r
	return r, nil
}

// exportImage 以导出倍率合成（不替换预览）
func (s *Session) exportImage(highQuality bool) (*image.RGBA, settings.Style, error) {
	cropped := s.Cropped()
	if cropped == nil {
		return nil, settings.Style{}, ErrSessionClosed
	}

	style := s.Style()
	img, err := s.composer.Compose(cropped, style, compose.ExportScale(style, highQuality))
	if err != nil {
		s.notice("合成失败", err)
		return nil, style, err
	}
	return img, style, nil
}

// Download 导出到下载目录，返回文件路径
func (s *Session) Download(highQuality bool) (string, error) {
	img, style, err := s.exportImage(highQuality)
	if err != nil {
		return "", err
	}

	path, err := s.exporter.Download(img, style.Filename)
	if err != nil {
		s.notice("保存失败", err)
		return "", err
	}

	s.show("截图已保存", path)
	return path, nil
}

// Copy 导出到剪贴板
func (s *Session) Copy(highQuality bool) error {
	img, _, err := s.exportImage(highQuality)
	if err != nil {
		return err
	}

	if err := s.exporter.CopyToClipboard(img); err != nil {
		s.notice("复制失败", err)
		return err
	}

	b := img.Bounds()
	s.show("已复制到剪贴板", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	return nil
}

// Close 结束会话：释放裁剪缓存和合成结果，写入待保存的样式
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cropped = nil
	s.current.Release()
	s.current = nil
	s.mu.Unlock()

	s.renders.Close()
	if err := s.saver.Close(); err != nil {
		pterm.Warning.Printfln("会话 %s: 样式未能保存: %v", s.ID, err)
	}
	pterm.Debug.Printfln("会话 %s 已结束，持续 %s", s.ID, time.Since(s.CreatedAt).Round(time.Millisecond))
}

// Closed 会话是否已结束
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) notice(title string, err error) {
	pterm.Error.Printfln("%s: %v", title, err)
	s.show(title, err.Error())
}

func (s *Session) show(title, message string) {
	if err := s.notifier.Show(title, message); err != nil {
		pterm.Debug.Printfln("通知发送失败: %v", err)
	}
}

// newID 生成会话 ID
func newID() ulid.ULID {
	return ulid.Make()
}

var _ Composer = (*compose.Compositor)(nil)
