package hotkey

import "golang.design/x/hotkey"

// X11 下 Mod1 通常是 Alt，Mod4 是 Super
var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.Mod1,
	"shift": hotkey.ModShift,
	"win":   hotkey.Mod4,
}
