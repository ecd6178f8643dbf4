package settings

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// BackgroundMode 背景模式
type BackgroundMode string

const (
	BackgroundSolid    BackgroundMode = "solid"    // 纯色
	BackgroundGradient BackgroundMode = "gradient" // 渐变
)

// ExportScales 支持的导出倍率
var ExportScales = []int{1, 2, 3}

// GradientIDs 预设渐变名称（与 compose 调色板一致）
var GradientIDs = []string{"sunset", "ocean", "forest", "fire", "sky", "purple", "gold", "mint"}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Shadow 阴影设置
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	OffsetX int     `json:"offsetX"`
	OffsetY int     `json:"offsetY"`
	Blur    int     `json:"blur"`
	Opacity float64 `json:"opacity"`
}

// Style 截图样式设置（最近一次使用的值会被持久化）
type Style struct {
	BackgroundColor string         `json:"backgroundColor"`
	BackgroundMode  BackgroundMode `json:"backgroundMode"`
	Gradient        string         `json:"gradient"`
	Padding         int            `json:"padding"`
	OuterRadius     int            `json:"outerRadius"`
	InnerRadius     int            `json:"innerRadius"`
	Shadow          Shadow         `json:"shadow"`
	BrowserFrame    bool           `json:"browserFrame"`
	ExportScale     int            `json:"exportScale"`
	Filename        string         `json:"filename"`
}

// Defaults 返回默认样式
func Defaults() Style {
	return Style{
		BackgroundColor: "#FF5F57",
		BackgroundMode:  BackgroundSolid,
		Gradient:        "sunset",
		Padding:         30,
		OuterRadius:     16,
		InnerRadius:     12,
		Shadow: Shadow{
			Enabled: false,
			Color:   "#000000",
			OffsetX: 0,
			OffsetY: 8,
			Blur:    16,
			Opacity: 0.2,
		},
		BrowserFrame: false,
		ExportScale:  2,
		Filename:     "screenshot",
	}
}

// Normalize 修正非法值：半径和内边距不能为负，其余非法值回退到默认值
func (s Style) Normalize() Style {
	d := Defaults()

	s.Padding = max(s.Padding, 0)
	s.OuterRadius = max(s.OuterRadius, 0)
	s.InnerRadius = max(s.InnerRadius, 0)
	s.Shadow.Blur = max(s.Shadow.Blur, 0)
	s.Shadow.Opacity = lo.Clamp(s.Shadow.Opacity, 0, 1)

	if s.BackgroundMode != BackgroundSolid && s.BackgroundMode != BackgroundGradient {
		s.BackgroundMode = d.BackgroundMode
	}
	if !lo.Contains(GradientIDs, s.Gradient) {
		s.Gradient = d.Gradient
	}
	if !lo.Contains(ExportScales, s.ExportScale) {
		s.ExportScale = d.ExportScale
	}
	if !hexColorRe.MatchString(s.BackgroundColor) {
		s.BackgroundColor = d.BackgroundColor
	}
	if !hexColorRe.MatchString(s.Shadow.Color) {
		s.Shadow.Color = d.Shadow.Color
	}

	s.Filename = strings.TrimSpace(s.Filename)
	return s
}

// Decode 解析持久化的样式，缺失字段使用默认值
func Decode(data []byte) (Style, error) {
	s := Defaults()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("解析样式失败: %w", err)
	}
	return s.Normalize(), nil
}

// Encode 序列化样式
func (s Style) Encode() ([]byte, error) {
	return json.Marshal(s)
}
