package compose

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// Stop 渐变色标
type Stop struct {
	Offset float64
	Color  string
}

// Gradient 预设渐变，沿画布左上到右下的对角线
type Gradient struct {
	ID    string
	Stops []Stop
}

var gradients = []Gradient{
	{"sunset", []Stop{{0, "#ff9a9e"}, {0.5, "#fecfef"}, {1, "#fecfef"}}},
	{"ocean", []Stop{{0, "#667eea"}, {1, "#764ba2"}}},
	{"forest", []Stop{{0, "#134e5e"}, {1, "#71b280"}}},
	{"fire", []Stop{{0, "#fa709a"}, {1, "#fee140"}}},
	{"sky", []Stop{{0, "#a8edea"}, {1, "#fed6e3"}}},
	{"purple", []Stop{{0, "#667eea"}, {1, "#764ba2"}}},
	{"gold", []Stop{{0, "#f7971e"}, {1, "#ffd200"}}},
	{"mint", []Stop{{0, "#89f7fe"}, {1, "#66a6ff"}}},
}

// Gradients 返回全部预设渐变（按固定顺序）
func Gradients() []Gradient {
	return append([]Gradient(nil), gradients...)
}

// LookupGradient 按名称查找渐变
func LookupGradient(id string) (Gradient, bool) {
	return lo.Find(gradients, func(g Gradient) bool { return g.ID == id })
}

// ParseHexColor 解析 #rgb / #rrggbb 颜色
func ParseHexColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("无效的颜色 %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func mustColor(s string) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
