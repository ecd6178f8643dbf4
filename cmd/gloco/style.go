package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gloco/internal/compose"
	"gloco/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "查看或修改截图样式",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前样式",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "修改样式（只修改指定的字段）",
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "恢复默认样式",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repo.Save(cmd.Context(), settings.Defaults()); err != nil {
			return fmt.Errorf("保存样式失败: %w", err)
		}
		pterm.Success.Println("已恢复默认样式")
		return nil
	},
}

var gradientsCmd = &cobra.Command{
	Use:   "gradients",
	Short: "列出预设渐变",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := pterm.TableData{{"名称", "色标"}}
		for _, g := range compose.Gradients() {
			stops := make([]string, 0, len(g.Stops))
			for _, s := range g.Stops {
				stops = append(stops, fmt.Sprintf("%s@%.0f%%", s.Color, s.Offset*100))
			}
			data = append(data, []string{g.ID, strings.Join(stops, " ")})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	settingsShowCmd.Flags().StringP("output", "o", "", "输出格式 (json)")
	addStyleFlags(settingsSetCmd.Flags())

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd, gradientsCmd)
	rootCmd.AddCommand(settingsCmd)
}

// addStyleFlags 样式字段对应的命令行参数
func addStyleFlags(fs *pflag.FlagSet) {
	fs.String("background", "", "背景颜色，如 #FF5F57")
	fs.String("mode", "", "背景模式 (solid|gradient)")
	fs.String("gradient", "", "预设渐变名称")
	fs.Int("padding", 0, "内边距")
	fs.Int("outer-radius", 0, "外圆角半径")
	fs.Int("inner-radius", 0, "截图圆角半径")
	fs.Bool("shadow", false, "启用阴影")
	fs.String("shadow-color", "", "阴影颜色")
	fs.Int("shadow-x", 0, "阴影水平偏移")
	fs.Int("shadow-y", 0, "阴影垂直偏移")
	fs.Int("shadow-blur", 0, "阴影模糊半径")
	fs.Float64("shadow-opacity", 0, "阴影不透明度 0-1")
	fs.Bool("frame", false, "显示浏览器边框")
	fs.Int("scale", 0, "导出倍率 (1|2|3)")
	fs.String("filename", "", "保存的文件名")
}

// applyStyleFlags 把用户显式指定的参数覆盖到样式上
func applyStyleFlags(fs *pflag.FlagSet, s settings.Style) (settings.Style, error) {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}
	flag := func(name string, dst *bool) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetBool(name)
		}
	}

	var mode string
	str("background", &s.BackgroundColor)
	str("mode", &mode)
	str("gradient", &s.Gradient)
	num("padding", &s.Padding)
	num("outer-radius", &s.OuterRadius)
	num("inner-radius", &s.InnerRadius)
	flag("shadow", &s.Shadow.Enabled)
	str("shadow-color", &s.Shadow.Color)
	num("shadow-x", &s.Shadow.OffsetX)
	num("shadow-y", &s.Shadow.OffsetY)
	num("shadow-blur", &s.Shadow.Blur)
	flag("frame", &s.BrowserFrame)
	num("scale", &s.ExportScale)
	str("filename", &s.Filename)
	if err == nil && fs.Changed("shadow-opacity") {
		s.Shadow.Opacity, err = fs.GetFloat64("shadow-opacity")
	}
	if err != nil {
		return s, err
	}

	if mode != "" {
		s.BackgroundMode = settings.BackgroundMode(mode)
	}
	// 指定了渐变但没指定模式时切到渐变
	if fs.Changed("gradient") && !fs.Changed("mode") {
		s.BackgroundMode = settings.BackgroundGradient
	}
	if fs.Changed("background") && !fs.Changed("mode") {
		s.BackgroundMode = settings.BackgroundSolid
	}

	normalized := s.Normalize()
	if fs.Changed("scale") && normalized.ExportScale != s.ExportScale {
		pterm.Warning.Printfln("不支持的导出倍率 %d，使用 %d", s.ExportScale, normalized.ExportScale)
	}
	if fs.Changed("gradient") && normalized.Gradient != s.Gradient {
		pterm.Warning.Printfln("未知渐变 %q，使用 %q", s.Gradient, normalized.Gradient)
	}
	return normalized, nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.repo.Load(cmd.Context())
	if err != nil {
		pterm.Warning.Printfln("读取样式失败，显示默认样式: %v", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	printStyle(s)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := setStyle(cmd.Context(), a.repo, cmd.Flags())
	if err != nil {
		return err
	}

	pterm.Success.Println("样式已保存")
	printStyle(s)
	return nil
}

// setStyle 读取已保存的样式，覆盖指定的字段后立即写回
func setStyle(ctx context.Context, repo *settings.Repository, fs *pflag.FlagSet) (settings.Style, error) {
	current, err := repo.Load(ctx)
	if err != nil {
		pterm.Warning.Printfln("读取样式失败，基于默认样式修改: %v", err)
	}

	s, err := applyStyleFlags(fs, current)
	if err != nil {
		return s, err
	}
	if err := repo.Save(ctx, s); err != nil {
		return s, fmt.Errorf("保存样式失败: %w", err)
	}
	return s, nil
}

func printStyle(s settings.Style) {
	background := s.BackgroundColor
	if s.BackgroundMode == settings.BackgroundGradient {
		background = "渐变 " + s.Gradient
	}
	shadow := "关闭"
	if s.Shadow.Enabled {
		shadow = fmt.Sprintf("%s 偏移(%d,%d) 模糊 %d 不透明度 %.2f",
			s.Shadow.Color, s.Shadow.OffsetX, s.Shadow.OffsetY, s.Shadow.Blur, s.Shadow.Opacity)
	}

	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"背景", background},
		{"内边距", fmt.Sprint(s.Padding)},
		{"外圆角", fmt.Sprint(s.OuterRadius)},
		{"截图圆角", fmt.Sprint(s.InnerRadius)},
		{"阴影", shadow},
		{"浏览器边框", fmt.Sprint(s.BrowserFrame)},
		{"导出倍率", fmt.Sprintf("%dx", s.ExportScale)},
		{"文件名", s.Filename},
	}).Render()
}
