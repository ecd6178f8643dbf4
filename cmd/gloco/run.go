package main

import (
	"context"
	"os/exec"
	"runtime"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gloco/internal/capture"
	"gloco/internal/hotkey"
	"gloco/internal/session"
	"gloco/internal/tray"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "常驻托盘，按快捷键截图",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.EnsureStorageDir(); err != nil {
			pterm.Warning.Printfln("无法创建保存目录: %v", err)
		}

		var runErr error
		// 热键和托盘需要在主线程运行
		hotkey.Run(func() {
			runErr = newDaemon(cmd.Context(), a).run()
		})
		return runErr
	},
}

var setHotkeyCmd = &cobra.Command{
	Use:   "set-hotkey <组合键>",
	Short: "设置快捷键，格式：ctrl+alt+s",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := hotkey.Parse(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.SetHotkey(b.Modifiers, b.Key); err != nil {
			return err
		}
		pterm.Success.Println("快捷键已设置为:", a.cfg.GetHotkeyString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, setHotkeyCmd)
}

// daemon 托盘常驻进程
type daemon struct {
	ctx      context.Context
	app      *app
	pipeline *session.Pipeline
	busy     sync.Mutex
}

func newDaemon(ctx context.Context, a *app) *daemon {
	capturer := capture.NewScreenCapturer(a.cfg.Behavior.Display)
	return &daemon{
		ctx:      ctx,
		app:      a,
		pipeline: a.pipeline(capturer, capture.StaticSelector{}),
	}
}

func (d *daemon) run() error {
	cfg := d.app.cfg
	defer d.pipeline.Close()

	pterm.Info.Println("Gloco", version, "已启动")
	pterm.Info.Printfln("快捷键: %s", cfg.GetHotkeyString())
	pterm.Info.Printfln("截图保存到: %s", d.app.exporter.Downloader().Directory())

	// 创建并注册热键
	hk := hotkey.NewManager()
	if err := hk.Register(cfg.Hotkey.Modifiers, cfg.Hotkey.Key, d.onCapture); err != nil {
		pterm.Error.Println("注册热键失败，请检查快捷键是否被其他程序占用")
		pterm.Info.Println("提示: 可以通过 gloco set-hotkey 设置其他快捷键")
		return err
	}
	defer hk.Unregister()
	pterm.Success.Println("热键注册成功")

	hk.ListenAsync()

	t := tray.NewTray()
	t.SetHotkeyText(cfg.GetHotkeyString())
	t.SetOnCapture(d.onCapture)
	t.SetOnCopyLast(d.onCopyLast)
	t.SetOnOpenDir(d.openDir)
	t.SetOnQuit(func() {
		_ = hk.Unregister()
	})

	// 运行托盘（阻塞）
	t.Run()
	return nil
}

// onCapture 截图并保存；上一次截图还在处理时忽略
func (d *daemon) onCapture() {
	if !d.busy.TryLock() {
		pterm.Debug.Println("上一次截图尚未完成")
		return
	}
	defer d.busy.Unlock()

	s, err := d.pipeline.Start(d.ctx)
	if err != nil || s == nil {
		return
	}

	if _, err := s.Download(false); err != nil {
		return
	}
	if d.app.cfg.Behavior.CopyAfterCapture {
		_ = s.Copy(false)
	}
}

// onCopyLast 以高质量重新复制最近一次截图
func (d *daemon) onCopyLast() {
	s := d.pipeline.Active()
	if s == nil {
		_ = d.app.notifier.Show("没有可复制的截图", "请先截图")
		return
	}
	_ = s.Copy(true)
}

func (d *daemon) openDir() {
	dir := d.app.exporter.Downloader().Directory()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer.exe", dir)
	case "darwin":
		cmd = exec.Command("open", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}

	if err := cmd.Start(); err != nil {
		pterm.Error.Println("打开目录失败:", err)
	}
}
