package hotkey

import "golang.design/x/hotkey"

var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.ModOption,
	"shift": hotkey.ModShift,
	"win":   hotkey.ModCmd,
}
