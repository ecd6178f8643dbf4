package tray

import (
	"github.com/getlantern/systray"
)

// Tray 系统托盘
type Tray struct {
	onCapture  func()
	onCopyLast func()
	onOpenDir  func()
	onQuit     func()
	hotkeyText string
}

// NewTray 创建系统托盘
func NewTray() *Tray {
	return &Tray{
		hotkeyText: "alt+1",
	}
}

// SetHotkeyText 设置快捷键显示文本
func (t *Tray) SetHotkeyText(text string) {
	t.hotkeyText = text
}

// SetOnCapture 设置截图回调
func (t *Tray) SetOnCapture(fn func()) {
	t.onCapture = fn
}

// SetOnCopyLast 设置复制上一张回调
func (t *Tray) SetOnCopyLast(fn func()) {
	t.onCopyLast = fn
}

// SetOnOpenDir 设置打开目录回调
func (t *Tray) SetOnOpenDir(fn func()) {
	t.onOpenDir = fn
}

// SetOnQuit 设置退出回调
func (t *Tray) SetOnQuit(fn func()) {
	t.onQuit = fn
}

// Run 运行系统托盘（阻塞）
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit 退出托盘
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(getIcon())
	systray.SetTitle("Gloco")
	systray.SetTooltip("Gloco - 截图美化工具")

	mCapture := systray.AddMenuItem("截图 ("+t.hotkeyText+")", "选择区域并生成卡片")
	mCopy := systray.AddMenuItem("复制上一张", "以高质量重新复制最近的卡片")
	systray.AddSeparator()

	mOpenDir := systray.AddMenuItem("打开保存目录", "打开截图保存位置")
	systray.AddSeparator()

	mQuit := systray.AddMenuItem("退出", "退出程序")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				call(t.onCapture)
			case <-mCopy.ClickedCh:
				call(t.onCopyLast)
			case <-mOpenDir.ClickedCh:
				call(t.onOpenDir)
			case <-mQuit.ClickedCh:
				call(t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
