package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// MinSelectionSize 有效选区的最小宽高（CSS 像素）
const MinSelectionSize = 10

var (
	// ErrCaptureFailed 截图被拒绝或出错，整个会话中止
	ErrCaptureFailed = errors.New("截图失败")
	// ErrInvalidSelection 选区不合法（宽高 <= 0 或与截图无交集）
	ErrInvalidSelection = errors.New("选区无效")
)

// SelectionRect 用户选区，单位为视口 CSS 像素
type SelectionRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid 选区是否达到最小尺寸
func (r SelectionRect) Valid() bool {
	return r.Width >= MinSelectionSize && r.Height >= MinSelectionSize
}

// String 格式化为 x,y,w,h
func (r SelectionRect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRect 解析 "x,y,w,h" 格式的选区
func ParseRect(s string) (SelectionRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return SelectionRect{}, fmt.Errorf("选区格式应为 x,y,w,h: %q", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return SelectionRect{}, fmt.Errorf("选区格式应为 x,y,w,h: %q", s)
		}
		v[i] = n
	}

	return SelectionRect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// Viewport 视口信息：CSS 像素尺寸和设备像素比
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float64
}

// Capture 一次视口截图，由 Cropper 消费
type Capture struct {
	Image    image.Image
	Viewport Viewport
}

// Capturer 截图接口
type Capturer interface {
	// Capture 截取当前视口
	Capture(ctx context.Context) (*Capture, error)
}
