package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gloco/internal/capture"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "截取屏幕区域并保存为卡片",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		display, _ := cmd.Flags().GetInt("display")
		if !cmd.Flags().Changed("display") {
			display = a.cfg.Behavior.Display
		}
		return runOnce(cmd, a, capture.NewScreenCapturer(display))
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "把已有截图文件合成为卡片",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		dpr, _ := cmd.Flags().GetFloat64("dpr")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return runOnce(cmd, a, capture.NewFileCapturer(in, capture.Viewport{DevicePixelRatio: dpr}))
	},
}

func init() {
	for _, c := range []*cobra.Command{captureCmd, composeCmd} {
		c.Flags().String("rect", "", "选区 x,y,w,h（CSS 像素），默认整个视口")
		c.Flags().Bool("copy", false, "同时复制到剪贴板")
		c.Flags().Bool("no-save", false, "不保存文件")
		c.Flags().Bool("high-quality", false, "高质量导出（至少 2x）")
		c.Flags().Bool("persist", false, "把本次指定的样式保存为默认样式")
		addStyleFlags(c.Flags())
	}
	captureCmd.Flags().Int("display", 0, "显示器序号")
	composeCmd.Flags().String("in", "", "输入图片 (png/jpg/webp)")
	composeCmd.Flags().Float64("dpr", 1, "输入图片的设备像素比")
	_ = composeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(captureCmd, composeCmd)
}

// runOnce 非交互地跑一遍流水线：截图 → 裁剪 → 合成 → 导出
func runOnce(cmd *cobra.Command, a *app, c capture.Capturer) error {
	fs := cmd.Flags()

	var sel capture.StaticSelector
	if raw, _ := fs.GetString("rect"); raw != "" {
		r, err := capture.ParseRect(raw)
		if err != nil {
			return err
		}
		sel.Rect = &r
	}

	p := a.pipeline(c, sel)
	defer p.Close()

	s, err := p.Start(cmd.Context())
	if err != nil {
		return err
	}
	if s == nil {
		pterm.Warning.Printfln("选区小于 %dx%d，已取消", capture.MinSelectionSize, capture.MinSelectionSize)
		return nil
	}

	style, err := applyStyleFlags(fs, s.Style())
	if err != nil {
		return err
	}
	if persist, _ := fs.GetBool("persist"); persist {
		if _, err := s.Update(style); err != nil {
			return err
		}
	} else if err := s.Override(style); err != nil {
		return err
	}

	hq, _ := fs.GetBool("high-quality")
	copyFlag, _ := fs.GetBool("copy")
	noSave, _ := fs.GetBool("no-save")
	copyFlag = copyFlag || a.cfg.Behavior.CopyAfterCapture
	if noSave && !copyFlag {
		return fmt.Errorf("--no-save 需要配合 --copy 使用")
	}

	if !noSave {
		path, err := s.Download(hq)
		if err != nil {
			return err
		}
		pterm.Success.Println("已保存:", path)
	}
	if copyFlag {
		if err := s.Copy(hq); err != nil {
			return err
		}
		pterm.Success.Println("已复制到剪贴板")
	}
	return nil
}
