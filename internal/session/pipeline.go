package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"gloco/internal/capture"
	"gloco/internal/coalesce"
	"gloco/internal/compose"
	"gloco/internal/export"
	"gloco/internal/notify"
	"gloco/internal/settings"
)

// Pipeline 截图流水线；同一时刻只有一个活动会话
type Pipeline struct {
	Capturer   capture.Capturer
	Selector   capture.Selector
	Cropper    *capture.Cropper
	Composer   Composer
	Exporter   *export.Exporter
	Repository *settings.Repository
	Notifier   notify.Notifier

	SaveDelay   time.Duration // 样式保存防抖
	RenderDelay time.Duration // 重新合成的合并窗口

	mu     sync.Mutex
	active *Session
}

// Start 开始新会话：截图 → 选区 → 裁剪 → 读取样式 → 首次合成
// 用户取消选区时返回 nil, nil；新会话会结束上一个会话
func (p *Pipeline) Start(ctx context.Context) (*Session, error) {
	p.closeActive()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	notifier := p.notifier()

	shot, err := p.Capturer.Capture(ctx)
	if err != nil {
		pterm.Error.Printfln("截图失败: %v", err)
		_ = notifier.Show("截图失败", err.Error())
		return nil, err
	}

	selector := p.Selector
	if selector == nil {
		selector = capture.StaticSelector{}
	}
	rect, err := selector.Select(ctx, shot)
	if err != nil {
		return nil, err
	}
	if rect == nil {
		pterm.Info.Println("已取消选区")
		return nil, nil
	}

	cropper := p.Cropper
	if cropper == nil {
		cropper = capture.NewCropper(0)
	}
	cropped, err := cropper.Crop(shot, *rect)
	if err != nil {
		pterm.Error.Printfln("裁剪失败: %v", err)
		_ = notifier.Show("截图失败", err.Error())
		return nil, err
	}

	style, err := p.Repository.Load(ctx)
	if err != nil {
		pterm.Warning.Printfln("读取样式失败，使用默认样式: %v", err)
	}

	s := p.newSession(cropped, style)
	pterm.Debug.Printfln("会话 %s: 选区 %s, 输出 %dx%d (r=%.2f)",
		s.ID, rect, cropped.Image.Bounds().Dx(), cropped.Image.Bounds().Dy(), cropped.PixelRatio)

	// 首次合成失败不影响会话，之后的编辑会重新合成
	if _, err := s.Render(); err != nil && !errors.Is(err, ErrSessionClosed) {
		pterm.Warning.Printfln("首次合成失败: %v", err)
	}

	p.mu.Lock()
	p.active = s
	p.mu.Unlock()
	return s, nil
}

// Active 当前活动会话
func (p *Pipeline) Active() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && p.active.Closed() {
		p.active = nil
	}
	return p.active
}

// Close 结束活动会话
func (p *Pipeline) Close() {
	p.closeActive()
}

func (p *Pipeline) closeActive() {
	p.mu.Lock()
	prev := p.active
	p.active = nil
	p.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (p *Pipeline) newSession(cropped *capture.Cropped, style settings.Style) *Session {
	composer := p.Composer
	if composer == nil {
		composer = compose.NewCompositor()
	}
	delay := p.RenderDelay
	if delay <= 0 {
		delay = DefaultRenderDelay
	}

	s := &Session{
		ID:        newID(),
		CreatedAt: time.Now(),
		composer:  composer,
		exporter:  p.Exporter,
		notifier:  p.notifier(),
		saver:     settings.NewSaver(p.Repository, p.SaveDelay),
		style:     style.Normalize(),
		cropped:   cropped,
	}
	s.renders = coalesce.New(delay, func(v versioned) {
		_, _ = s.render(v)
	})
	return s
}

func (p *Pipeline) notifier() notify.Notifier {
	if p.Notifier == nil {
		return notify.Silent{}
	}
	return p.Notifier
}

// Validate 检查必需的组件
func (p *Pipeline) Validate() error {
	switch {
	case p.Capturer == nil:
		return fmt.Errorf("流水线缺少截图组件")
	case p.Repository == nil:
		return fmt.Errorf("流水线缺少样式仓库")
	case p.Exporter == nil:
		return fmt.Errorf("流水线缺少导出组件")
	}
	return nil
}
