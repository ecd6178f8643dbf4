//go:build windows

package main

import "syscall"

// 声明 DPI 感知后 GetDisplayBounds 返回物理像素，截图与视口换算才准确
// 必须早于任何 Win32 调用
func init() {
	user32 := syscall.NewLazyDLL("user32.dll")

	// Windows 10 1703+: PER_MONITOR_AWARE_V2 (-4)，失败再试 PER_MONITOR_AWARE (-3)
	if ctx := user32.NewProc("SetProcessDpiAwarenessContext"); ctx.Find() == nil {
		for _, v := range []uintptr{^uintptr(3), ^uintptr(2)} {
			if r, _, _ := ctx.Call(v); r != 0 {
				return
			}
		}
	}

	// Windows 8.1+: PROCESS_PER_MONITOR_DPI_AWARE，已设置过时退回 SYSTEM_DPI_AWARE
	shcore := syscall.NewLazyDLL("shcore.dll")
	if awareness := shcore.NewProc("SetProcessDpiAwareness"); awareness.Find() == nil {
		if r, _, _ := awareness.Call(2); r != 0 {
			awareness.Call(1)
		}
		return
	}

	user32.NewProc("SetProcessDPIAware").Call()
}
