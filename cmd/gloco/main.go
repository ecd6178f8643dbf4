package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gloco/internal/capture"
	"gloco/internal/clipboard"
	"gloco/internal/config"
	"gloco/internal/export"
	"gloco/internal/notify"
	"gloco/internal/session"
	"gloco/internal/settings"
)

var version = "v0.3.0"

var rootCmd = &cobra.Command{
	Use:   "gloco",
	Short: "截图美化工具：选区截图，加背景、圆角、阴影后复制或保存",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			pterm.EnableDebugMessages()
		}
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Gloco", version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "显示配置文件路径和当前配置",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			pterm.Warning.Printfln("加载配置失败，使用默认配置: %v", err)
		}
		pterm.Info.Println("配置文件路径:", cfg.Path())
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"快捷键", cfg.GetHotkeyString()},
			{"保存目录", cfg.Storage.Directory},
			{"格式", cfg.Storage.Format},
			{"样式数据库", cfg.Storage.SettingsDB},
			{"通知", fmt.Sprint(cfg.Behavior.ShowNotification)},
			{"截图后复制", fmt.Sprint(cfg.Behavior.CopyAfterCapture)},
			{"显示器", fmt.Sprint(cfg.Behavior.Display)},
		}).Render()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "输出调试信息")
	rootCmd.AddCommand(versionCmd, configCmd)
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// app 按配置组装的流水线
type app struct {
	cfg      *config.Config
	store    *settings.SQLiteStore
	repo     *settings.Repository
	exporter *export.Exporter
	notifier notify.Notifier
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		pterm.Warning.Printfln("加载配置失败，使用默认配置: %v", err)
	}

	store, err := settings.OpenSQLite(cfg.Storage.SettingsDB)
	if err != nil {
		return nil, fmt.Errorf("打开样式数据库失败: %w", err)
	}

	var notifier notify.Notifier = notify.Silent{}
	if cfg.Behavior.ShowNotification {
		notifier = notify.NewNotifier()
	}

	downloader := export.NewDownloader(cfg.Storage.Directory)
	a := &app{
		cfg:      cfg,
		store:    store,
		repo:     settings.NewRepository(store),
		exporter: export.NewExporter(downloader, clipboard.NewClipboard(), cfg.Storage.Format),
		notifier: notifier,
	}

	if days := cfg.Behavior.RetentionDays; days > 0 {
		if n, err := downloader.Cleanup(time.Duration(days) * 24 * time.Hour); err == nil && n > 0 {
			pterm.Debug.Printfln("已清理 %d 张旧截图", n)
		}
	}
	return a, nil
}

func (a *app) pipeline(c capture.Capturer, sel capture.Selector) *session.Pipeline {
	return &session.Pipeline{
		Capturer:   c,
		Selector:   sel,
		Cropper:    capture.NewCropper(a.cfg.Behavior.MinPixelRatio),
		Exporter:   a.exporter,
		Repository: a.repo,
		Notifier:   a.notifier,
		SaveDelay:  time.Duration(a.cfg.Behavior.DebounceMs) * time.Millisecond,
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		pterm.Debug.Printfln("关闭样式数据库失败: %v", err)
	}
}
