package notify

import (
	"github.com/pterm/pterm"
)

// AppID 通知来源名称
const AppID = "Gloco"

// Notifier 通知接口
type Notifier interface {
	Show(title, message string) error
}

// Console 终端通知
type Console struct{}

// Show 输出到终端
func (Console) Show(title, message string) error {
	pterm.Info.WithPrefix(pterm.Prefix{Text: title, Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)}).Println(message)
	return nil
}

// Silent 丢弃所有通知（配置关闭通知时使用）
type Silent struct{}

// Show 不做任何事
func (Silent) Show(string, string) error { return nil }
