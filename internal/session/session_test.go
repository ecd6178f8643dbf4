package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gloco/internal/capture"
	"gloco/internal/clipboard"
	"gloco/internal/compose"
	"gloco/internal/export"
	"gloco/internal/settings"
)

type fakeCapturer struct {
	err error
}

func (f fakeCapturer) Capture(ctx context.Context) (*capture.Capture, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, 400, 300))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	return &capture.Capture{Image: img, Viewport: capture.Viewport{Width: 400, Height: 300, DevicePixelRatio: 1}}, nil
}

type recorder struct {
	mu     sync.Mutex
	titles []string
}

func (r *recorder) Show(title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

// flakyComposer 在 fail 为 true 时合成失败
type flakyComposer struct {
	mu    sync.Mutex
	fail  bool
	inner *compose.Compositor
}

func (f *flakyComposer) Compose(c *capture.Cropped, s settings.Style, scale int) (*image.RGBA, error) {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, compose.ErrCompositionFailed
	}
	return f.inner.Compose(c, s, scale)
}

func (f *flakyComposer) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

// gatedComposer 启用后，第一次以指定内边距合成时阻塞，直到 release 关闭
type gatedComposer struct {
	inner   *compose.Compositor
	padding int
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedComposer(padding int) *gatedComposer {
	return &gatedComposer{
		inner:   compose.NewCompositor(),
		padding: padding,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedComposer) Compose(c *capture.Cropped, s settings.Style, scale int) (*image.RGBA, error) {
	if s.Padding == g.padding && g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.inner.Compose(c, s, scale)
}

type fixture struct {
	pipeline *Pipeline
	repo     *settings.Repository
	notes    *recorder
	cb       *clipboard.Memory
	dir      string
}

func newFixture(t *testing.T, rect *capture.SelectionRect) *fixture {
	t.Helper()
	f := &fixture{
		repo:  settings.NewRepository(settings.NewMemoryStore()),
		notes: &recorder{},
		cb:    &clipboard.Memory{},
		dir:   t.TempDir(),
	}
	f.pipeline = &Pipeline{
		Capturer:    fakeCapturer{},
		Selector:    capture.StaticSelector{Rect: rect},
		Exporter:    export.NewExporter(export.NewDownloader(f.dir), f.cb, export.FormatPNG),
		Repository:  f.repo,
		Notifier:    f.notes,
		SaveDelay:   20 * time.Millisecond,
		RenderDelay: 50 * time.Millisecond,
	}
	t.Cleanup(f.pipeline.Close)
	return f
}

func TestStartRendersPreview(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{X: 10, Y: 10, Width: 100, Height: 80})

	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, settings.Defaults(), s.Style())
	r := s.Current()
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.Seq)
	assert.Equal(t, compose.PreviewScale, r.Scale)
	// (100+60, 80+60) · 2
	assert.Equal(t, image.Rect(0, 0, 320, 280), r.Image.Bounds())
	assert.Same(t, s, f.pipeline.Active())
}

func TestStartCaptureFailed(t *testing.T) {
	f := newFixture(t, nil)
	f.pipeline.Capturer = fakeCapturer{err: capture.ErrCaptureFailed}

	s, err := f.pipeline.Start(context.Background())
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, capture.ErrCaptureFailed))
	assert.Equal(t, []string{"截图失败"}, f.notes.Titles())
}

func TestStartSmallSelectionCancels(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{X: 10, Y: 10, Width: 9, Height: 80})

	s, err := f.pipeline.Start(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, s)
	assert.Empty(t, f.notes.Titles())
	assert.Nil(t, f.pipeline.Active())
}

func TestUpdateCoalescesRenders(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	style := s.Style()
	for p := 1; p <= 5; p++ {
		style.Padding = p
		_, err := s.Update(style)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, s.Style().Padding)

	require.Eventually(t, func() bool {
		r := s.Current()
		return r != nil && r.Style.Padding == 5
	}, 2*time.Second, 10*time.Millisecond)

	// 初始合成 + 合并后的一次
	assert.Equal(t, uint64(2), s.Current().Seq)
	assert.Equal(t, image.Rect(0, 0, 220, 180), s.Current().Image.Bounds())

	require.Eventually(t, func() bool {
		saved, err := f.repo.Load(context.Background())
		return err == nil && saved.Padding == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpdateNormalizes(t *testing.T) {
	f := newFixture(t, nil)
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	style := s.Style()
	style.Padding = -4
	style.ExportScale = 7
	got, err := s.Update(style)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Padding)
	assert.Equal(t, 2, got.ExportScale)
}

func TestCompositionFailureKeepsPreviousRender(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	composer := &flakyComposer{inner: compose.NewCompositor()}
	f.pipeline.Composer = composer

	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	before := s.Current()
	require.NotNil(t, before)

	composer.setFail(true)
	_, err = s.Render()
	assert.True(t, errors.Is(err, compose.ErrCompositionFailed))
	assert.Same(t, before, s.Current())
	assert.NotNil(t, s.Current().Image)
	assert.Contains(t, f.notes.Titles(), "合成失败")

	composer.setFail(false)
	r, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.Seq)
	// 被替换的结果已释放
	assert.Nil(t, before.Image)
}

func TestDownloadAndCopy(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	style := s.Style()
	style.ExportScale = 1
	style.Filename = "card"
	_, err = s.Update(style)
	require.NoError(t, err)

	path, err := s.Download(false)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	w, h, err := export.DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, [2]int{160, 140}, [2]int{w, h})

	// 高质量导出至少 2x
	require.NoError(t, s.Copy(true))
	w, h, err = export.DecodeConfig(f.cb.Image())
	require.NoError(t, err)
	assert.Equal(t, [2]int{320, 280}, [2]int{w, h})

	assert.Contains(t, f.notes.Titles(), "截图已保存")
	assert.Contains(t, f.notes.Titles(), "已复制到剪贴板")
}

func TestCopyFailureIsRecoverable(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	f.cb.Err = errors.New("denied")
	err = s.Copy(false)
	assert.True(t, errors.Is(err, export.ErrExportFailed))
	assert.Contains(t, f.notes.Titles(), "复制失败")

	f.cb.Err = nil
	assert.NoError(t, s.Copy(false))
	assert.False(t, s.Closed())
}

func TestNewStartClosesPrevious(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})

	first, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	second, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.Closed())
	assert.Nil(t, first.Current())
	assert.Nil(t, first.Cropped())
	_, err = first.Update(settings.Defaults())
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.Same(t, second, f.pipeline.Active())
}

func TestCloseFlushesPendingSave(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	f.pipeline.SaveDelay = time.Hour
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	style := s.Style()
	style.BackgroundColor = "#123456"
	_, err = s.Update(style)
	require.NoError(t, err)
	s.Close()

	saved, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#123456", saved.BackgroundColor)

	_, err = s.Render()
	assert.True(t, errors.Is(err, ErrSessionClosed))
	_, err = s.Download(false)
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.Nil(t, f.pipeline.Active())
}

func TestSessionLoadsPersistedStyle(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	style := settings.Defaults()
	style.BackgroundMode = settings.BackgroundGradient
	style.Gradient = "mint"
	require.NoError(t, f.repo.Save(context.Background(), style))

	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mint", s.Style().Gradient)

	c := s.Current().Image.RGBAAt(4, 40)
	assert.NotEqual(t, color.RGBA{}, c)
}

func TestValidate(t *testing.T) {
	_, err := (&Pipeline{}).Start(context.Background())
	assert.Error(t, err)
}

func TestOverrideDoesNotPersist(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)

	style := s.Style()
	style.Padding = 0
	require.NoError(t, s.Override(style))
	assert.Equal(t, 0, s.Style().Padding)

	s.Close()
	saved, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults().Padding, saved.Padding)
	assert.True(t, errors.Is(s.Override(style), ErrSessionClosed))
}

func TestSlowRenderDoesNotOverwriteNewerStyle(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	gated := newGatedComposer(1)
	f.pipeline.Composer = gated

	style := settings.Defaults()
	style.Padding = 1
	require.NoError(t, f.repo.Save(context.Background(), style))

	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, s.Current().Style.Padding)

	gated.armed.Store(true)
	done := make(chan *Render, 1)
	go func() {
		r, err := s.Render()
		assert.NoError(t, err)
		done <- r
	}()
	<-gated.entered

	style.Padding = 5
	require.NoError(t, s.Override(style))
	require.Eventually(t, func() bool {
		r := s.Current()
		return r != nil && r.Style.Padding == 5
	}, 2*time.Second, 10*time.Millisecond)

	close(gated.release)
	r := <-done
	require.NotNil(t, r)
	assert.Equal(t, 5, r.Style.Padding)
	assert.Equal(t, 5, s.Current().Style.Padding)
	assert.Equal(t, 5, s.Style().Padding)
	assert.Equal(t, uint64(2), s.Current().Seq)
}

func TestSessionRecordsCreation(t *testing.T) {
	f := newFixture(t, &capture.SelectionRect{Width: 100, Height: 80})
	before := time.Now()
	s, err := f.pipeline.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, s.CreatedAt.Before(before))
	assert.False(t, s.CreatedAt.After(time.Now()))
}
