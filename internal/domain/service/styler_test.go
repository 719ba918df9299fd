package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/pkg/generator"
	"github.com/Badsnus/qr-styler-bot/pkg/logger"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	mu     sync.Mutex
	m      map[int64]styler.Inputs
	getErr error
}

func (s *memSessions) Get(_ context.Context, userID int64) (styler.Inputs, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return styler.Inputs{}, false, s.getErr
	}
	in, ok := s.m[userID]
	return in, ok, nil
}

func (s *memSessions) Set(_ context.Context, userID int64, in styler.Inputs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = in
	return nil
}

func (s *memSessions) get(userID int64) (styler.Inputs, bool) {
	in, ok, _ := s.Get(context.Background(), userID)
	return in, ok
}

type memLogos struct {
	mu     sync.Mutex
	m      map[int64][]byte
	getErr error
}

func (s *memLogos) Get(_ context.Context, userID int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.m[userID], nil
}

func (s *memLogos) Set(_ context.Context, userID int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = data
	return nil
}

func (s *memLogos) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

type fakeMailer struct {
	to        string
	name      string
	fileFound bool
}

func (m *fakeMailer) SendExport(to, path, name string) error {
	m.to, m.name = to, name
	_, err := os.Stat(path)
	m.fileFound = err == nil
	return nil
}

type fixture struct {
	svc      *StylerService
	sessions *memSessions
	logos    *memLogos
	mailer   *fakeMailer
}

func newFixture(t *testing.T, opts StylerOptions) *fixture {
	t.Helper()
	f := &fixture{
		sessions: &memSessions{m: make(map[int64]styler.Inputs)},
		logos:    &memLogos{m: make(map[int64][]byte)},
		mailer:   &fakeMailer{},
	}
	assembler := styler.NewAssembler(styler.SizeLimits{Default: 300, Min: 100, Max: 1000})
	exporter := generator.NewExporter(t.TempDir(), 200*time.Millisecond)
	f.svc = NewStylerService(assembler, f.sessions, f.logos, exporter, f.mailer, logger.Nop(), opts)
	return f
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fetchBytes(data []byte) LogoFetcher {
	return func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Size()
}

func TestOpenDefaults(t *testing.T) {
	f := newFixture(t, StylerOptions{})

	p, r, err := f.svc.Open(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 300, r.Size)
	assert.Equal(t, image.Pt(300, 300), decodeSize(t, r.PNG))
	assert.Equal(t, styler.DefaultInputs(300), r.Inputs)
	assert.False(t, r.HasLogo)
	assert.Equal(t, styler.DefaultMargin, p.Config().Margin)
	assert.Equal(t, 1, f.svc.Previews().Len())
}

func TestOpenRestoresSession(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	in := styler.DefaultInputs(300)
	in.Size = "400"
	f.sessions.m[7] = in
	f.logos.m[7] = pngBytes(t, 50, 50, color.RGBA{R: 255, A: 255})

	p, r, err := f.svc.Open(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 400, r.Size)
	assert.True(t, r.HasLogo)
	assert.Equal(t, image.Pt(80, 80), p.Config().Logo.Bounds().Size())
}

func TestUpdateSize(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	tests := []struct {
		raw  string
		want int
	}{
		{"abc", 300},
		{"", 300},
		{"5000", 1000},
		{"50", 100},
		{"420", 420},
	}
	for _, tt := range tests {
		r, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Size = tt.raw })
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, r.Size, tt.raw)
		assert.Equal(t, image.Pt(tt.want, tt.want), decodeSize(t, r.PNG), tt.raw)

		stored, ok := f.sessions.get(1)
		require.True(t, ok)
		assert.Equal(t, tt.raw, stored.Size)
	}
}

func TestUpdateCompatRoundTrip(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) {
		in.DotStyle = string(qr.DotDots)
		in.ECLevel = string(qr.ECLow)
	})
	require.NoError(t, err)

	r, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Compat = true })
	require.NoError(t, err)
	p, ok := f.svc.Previews().Get(1)
	require.True(t, ok)
	cfg := p.Config()
	assert.Equal(t, qr.DotSquare, cfg.DotStyle)
	assert.Equal(t, qr.ECHigh, cfg.ErrorCorrection)
	assert.Equal(t, styler.CompatMargin, cfg.Margin)
	assert.Equal(t, string(qr.DotDots), r.Inputs.DotStyle)

	_, err = f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Compat = false })
	require.NoError(t, err)
	cfg = p.Config()
	assert.Equal(t, qr.DotDots, cfg.DotStyle)
	assert.Equal(t, qr.ECLow, cfg.ErrorCorrection)
	assert.Equal(t, styler.DefaultMargin, cfg.Margin)
}

func TestUpdateColors(t *testing.T) {
	f := newFixture(t, StylerOptions{})

	r, err := f.svc.Update(context.Background(), 1, func(in *styler.Inputs) {
		in.Background.SetCode("#f00")
		in.Dots.Code = "#12345"
	})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", r.Inputs.Background.Picker)

	p, _ := f.svc.Previews().Get(1)
	cfg := p.Config()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.Background)
	assert.Equal(t, color.RGBA{A: 255}, cfg.Foreground)
}

func TestUpdateRejectsInvalidText(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Text = "" })
	assert.ErrorIs(t, err, errorz.ErrInvalidText)

	_, ok := f.sessions.get(1)
	assert.False(t, ok)
	p, _ := f.svc.Previews().Get(1)
	assert.Equal(t, qr.Default.Content, p.Config().Content)
}

func TestSetLogo(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()
	data := pngBytes(t, 800, 400, color.RGBA{B: 255, A: 255})

	r, err := f.svc.SetLogo(ctx, 1, fetchBytes(data))
	require.NoError(t, err)
	assert.True(t, r.HasLogo)
	assert.Equal(t, data, f.logos.m[1])

	p, _ := f.svc.Previews().Get(1)
	assert.Equal(t, image.Pt(60, 60), p.Config().Logo.Bounds().Size())
	assert.Equal(t, styler.ImageMargin, p.Config().LogoMargin)

	// The logo follows the size.
	_, err = f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Size = "500" })
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 100), p.Config().Logo.Bounds().Size())
}

func TestSetLogoFailureKeepsPrevious(t *testing.T) {
	f := newFixture(t, StylerOptions{MaxLogoBytes: 4096})
	ctx := context.Background()
	good := pngBytes(t, 40, 40, color.RGBA{G: 255, A: 255})

	_, err := f.svc.SetLogo(ctx, 1, fetchBytes(good))
	require.NoError(t, err)

	_, err = f.svc.SetLogo(ctx, 1, fetchBytes([]byte("definitely not an image")))
	assert.ErrorIs(t, err, errorz.ErrLogoUnreadable)

	_, err = f.svc.SetLogo(ctx, 1, fetchBytes(nil))
	assert.ErrorIs(t, err, errorz.ErrLogoUnreadable)

	_, err = f.svc.SetLogo(ctx, 1, fetchBytes(make([]byte, 5000)))
	assert.ErrorIs(t, err, errorz.ErrLogoTooLarge)

	p, _ := f.svc.Previews().Get(1)
	assert.True(t, p.HasLogo())
	assert.Equal(t, good, f.logos.m[1])
}

func TestSetLogoSupersededPassIsDropped(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()
	_, _, err := f.svc.Open(ctx, 1)
	require.NoError(t, err)

	slow := pngBytes(t, 30, 30, color.RGBA{R: 255, A: 255})
	fast := pngBytes(t, 20, 20, color.RGBA{B: 255, A: 255})

	started := make(chan struct{})
	release := make(chan struct{})
	slowFetch := func(context.Context) (io.ReadCloser, error) {
		close(started)
		<-release
		return io.NopCloser(bytes.NewReader(slow)), nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.SetLogo(ctx, 1, slowFetch)
		done <- err
	}()

	<-started
	_, err = f.svc.SetLogo(ctx, 1, fetchBytes(fast))
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, errorz.ErrLogoSuperseded)
	assert.Equal(t, fast, f.logos.m[1])
}

func TestRemoveLogo(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	_, err := f.svc.SetLogo(ctx, 1, fetchBytes(pngBytes(t, 40, 40, color.Black)))
	require.NoError(t, err)

	r, err := f.svc.RemoveLogo(ctx, 1)
	require.NoError(t, err)
	assert.False(t, r.HasLogo)
	assert.Empty(t, f.logos.m)

	p, _ := f.svc.Previews().Get(1)
	assert.Nil(t, p.Config().Logo)

	// Size changes must not bring it back.
	_, err = f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Size = "600" })
	require.NoError(t, err)
	assert.Nil(t, p.Config().Logo)
}

func TestReset(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) {
		in.Text = "hello"
		in.Size = "700"
	})
	require.NoError(t, err)
	_, err = f.svc.SetLogo(ctx, 1, fetchBytes(pngBytes(t, 40, 40, color.Black)))
	require.NoError(t, err)

	r, err := f.svc.Reset(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, styler.DefaultInputs(300), r.Inputs)
	assert.False(t, r.HasLogo)
	assert.Empty(t, f.logos.m)
}

func TestRenderSVG(t *testing.T) {
	f := newFixture(t, StylerOptions{})

	data, err := f.svc.Render(context.Background(), 1, qr.ExtSVG)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestExportHighRes(t *testing.T) {
	f := newFixture(t, StylerOptions{HighResScale: 3})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 1, func(in *styler.Inputs) { in.Size = "200" })
	require.NoError(t, err)
	_, err = f.svc.SetLogo(ctx, 1, fetchBytes(pngBytes(t, 100, 50, color.Black)))
	require.NoError(t, err)

	artifact, err := f.svc.ExportHighRes(ctx, 1)
	require.NoError(t, err)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(600, 600), decodeSize(t, data))

	// The live preview is untouched by the export.
	p, _ := f.svc.Previews().Get(1)
	assert.Equal(t, 200, p.Config().Size)

	require.Eventually(t, func() bool {
		_, err := os.Stat(artifact.Path)
		return os.IsNotExist(err)
	}, 3*time.Second, 20*time.Millisecond)

	// A second removal is harmless.
	assert.NoError(t, artifact.Remove())
}

func TestEmailExport(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	err := f.svc.EmailExport(ctx, 1, "not-an-email")
	assert.ErrorIs(t, err, errorz.ErrInvalidEmail)

	require.NoError(t, f.svc.EmailExport(ctx, 1, "user@example.com"))
	assert.Equal(t, "user@example.com", f.mailer.to)
	assert.True(t, f.mailer.fileFound)

	entries, err := os.ReadDir(f.svc.exporter.(*generator.Exporter).OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCurrent(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	ctx := context.Background()

	in, hasLogo, err := f.svc.Current(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, styler.DefaultInputs(300), in)
	assert.False(t, hasLogo)

	_, err = f.svc.SetLogo(ctx, 3, fetchBytes(pngBytes(t, 10, 10, color.Black)))
	require.NoError(t, err)
	_, hasLogo, err = f.svc.Current(ctx, 3)
	require.NoError(t, err)
	assert.True(t, hasLogo)
}

func TestUnreadableSessionFallsBackToDefaults(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	f.sessions.getErr = errors.New("failed to decode session of 1: invalid character")
	f.logos.getErr = errors.New("connection refused")

	_, r, err := f.svc.Open(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, styler.DefaultInputs(300), r.Inputs)
	assert.False(t, r.HasLogo)

	r, err = f.svc.Reset(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, styler.DefaultInputs(300), r.Inputs)

	f.sessions.getErr = nil
	saved, ok := f.sessions.get(1)
	require.True(t, ok)
	assert.Equal(t, styler.DefaultInputs(300), saved)
}

func TestUnreadableSessionDoesNotBlockReset(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	f.sessions.getErr = errors.New("invalid character")

	r, err := f.svc.Reset(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 300, r.Size)
}

func TestEvictIdlePreviews(t *testing.T) {
	f := newFixture(t, StylerOptions{})
	previews := f.svc.Previews()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	previews.now = func() time.Time { return now }

	_, err := f.svc.Update(context.Background(), 1, func(in *styler.Inputs) { in.Text = "kept" })
	require.NoError(t, err)
	_, _, err = f.svc.Open(context.Background(), 2)
	require.NoError(t, err)

	now = now.Add(40 * time.Minute)
	_, _, err = f.svc.Current(context.Background(), 2)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, previews.EvictIdle(time.Hour))
	assert.Equal(t, 1, previews.Len())
	_, ok := previews.Get(1)
	assert.False(t, ok)

	// an evicted preview comes back from the stored session
	in, _, err := f.svc.Current(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "kept", in.Text)
	assert.Equal(t, 2, previews.Len())
}
