package capture

import (
	"context"
)

// Selector 选区接口
type Selector interface {
	// Select 返回用户选择的区域
	// shot: 整屏截图作为背景
	// 返回 nil 表示用户取消（包括选区小于 MinSelectionSize）
	Select(ctx context.Context, shot *Capture) (*SelectionRect, error)
}

// StaticSelector 使用预先给定的选区（命令行参数或自动化调用）
type StaticSelector struct {
	Rect *SelectionRect
}

// Select 返回预设选区；未设置时选中整个视口
func (s StaticSelector) Select(ctx context.Context, shot *Capture) (*SelectionRect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.Rect == nil {
		if shot == nil {
			return nil, nil
		}
		r := FullViewport(shot.Viewport, shot.Image.Bounds().Dx(), shot.Image.Bounds().Dy())
		return checked(r), nil
	}

	return checked(*s.Rect), nil
}

// FullViewport 覆盖整个视口的选区
func FullViewport(vp Viewport, rasterW, rasterH int) SelectionRect {
	w, h := vp.Width, vp.Height
	if w <= 0 || h <= 0 {
		w, h = rasterW, rasterH
	}
	return SelectionRect{Width: w, Height: h}
}

// checked 太小的选区视为取消
func checked(r SelectionRect) *SelectionRect {
	if !r.Valid() {
		return nil
	}
	return &r
}
