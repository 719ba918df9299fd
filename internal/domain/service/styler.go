package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	"github.com/Badsnus/qr-styler-bot/pkg/generator"
	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	"github.com/Badsnus/qr-styler-bot/pkg/logo"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
)

type sessionStorage interface {
	Get(ctx context.Context, userID int64) (styler.Inputs, bool, error)
	Set(ctx context.Context, userID int64, in styler.Inputs) error
}

type logoStorage interface {
	Get(ctx context.Context, userID int64) ([]byte, error)
	Set(ctx context.Context, userID int64, data []byte) error
	Clear(ctx context.Context, userID int64) error
}

type exporter interface {
	Create(data []byte, ext string) (*generator.Artifact, error)
	ScheduleRemove(a *generator.Artifact, onErr func(error)) *time.Timer
}

type mailer interface {
	SendExport(to, path, name string) error
}

// LogoFetcher opens the uploaded logo file.
type LogoFetcher func(ctx context.Context) (io.ReadCloser, error)

// Rendered is the outcome of a preview update.
type Rendered struct {
	PNG     []byte
	Size    int
	Inputs  styler.Inputs
	HasLogo bool
}

type StylerOptions struct {
	HighResScale int
	MaxLogoBytes int64
}

type StylerService struct {
	assembler *styler.Assembler
	sessions  sessionStorage
	logos     logoStorage
	exporter  exporter
	mailer    mailer
	previews  *Previews

	hrScale      int
	maxLogoBytes int64

	logger *types.Logger
}

func NewStylerService(
	assembler *styler.Assembler,
	sessions sessionStorage,
	logos logoStorage,
	exporter exporter,
	mailer mailer,
	logger *types.Logger,
	opts StylerOptions,
) *StylerService {
	if opts.HighResScale <= 0 {
		opts.HighResScale = 3
	}
	return &StylerService{
		assembler:    assembler,
		sessions:     sessions,
		logos:        logos,
		exporter:     exporter,
		mailer:       mailer,
		previews:     NewPreviews(),
		hrScale:      opts.HighResScale,
		maxLogoBytes: opts.MaxLogoBytes,
		logger:       logger,
	}
}

func (s *StylerService) Previews() *Previews {
	return s.previews
}

func (s *StylerService) Limits() styler.SizeLimits {
	return s.assembler.Limits()
}

// Inputs returns the stored session of userID or the defaults.
func (s *StylerService) Inputs(ctx context.Context, userID int64) (styler.Inputs, error) {
	in, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return styler.Inputs{}, err
	}
	if !ok {
		return styler.DefaultInputs(s.assembler.Limits().Default), nil
	}
	return in, nil
}

// Open returns the preview of userID, restoring it from the stored session
// and logo on first use.
func (s *StylerService) Open(ctx context.Context, userID int64) (*Preview, *Rendered, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	data, err := p.engine.Render(qr.ExtPNG)
	if err != nil {
		return nil, nil, err
	}
	return p, rendered(p, data), nil
}

// Current returns the inputs the live preview of userID is rendered from.
func (s *StylerService) Current(ctx context.Context, userID int64) (styler.Inputs, bool, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return styler.Inputs{}, false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputs, p.logo != nil, nil
}

func (s *StylerService) ensure(ctx context.Context, userID int64) (*Preview, error) {
	p, _ := s.previews.getOrCreate(userID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return p, nil
	}

	in, err := s.Inputs(ctx, userID)
	if err != nil {
		s.logger.Warnf("(user: %d) failed to load session, using defaults: %v", userID, err)
		in = styler.DefaultInputs(s.assembler.Limits().Default)
	}

	src, err := s.logos.Get(ctx, userID)
	if err != nil {
		s.logger.Warnf("(user: %d) failed to load logo, going without it: %v", userID, err)
		src = nil
	}
	if src != nil {
		img, err := logo.Decode(bytes.NewReader(src))
		if err != nil {
			s.logger.Warnf("(user: %d) stored logo is unreadable, dropping it: %v", userID, err)
		} else {
			p.source = img
		}
	}

	if _, err := s.applyLocked(p, in); err != nil {
		s.logger.Warnf("(user: %d) stored session is unusable, using defaults: %v", userID, err)
		if _, err := s.applyLocked(p, styler.DefaultInputs(s.assembler.Limits().Default)); err != nil {
			return nil, err
		}
	}
	p.ready = true
	return p, nil
}

// applyLocked renders in on a copy of the engine first, so an input the
// renderer rejects leaves the preview at its last good state.
func (s *StylerService) applyLocked(p *Preview, in styler.Inputs) ([]byte, error) {
	if !validator.QRText(in.Text) {
		return nil, errorz.ErrInvalidText
	}

	cfg := s.assembler.Assemble(in, 1)
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrInvalidColor, err)
	}

	size := p.size
	cfg.Image = p.logo
	if p.source != nil && (p.logo == nil || p.size != cfg.Width) {
		comp, err := logo.Composite(p.source, cfg.Width, 1)
		if err != nil {
			s.logger.Warnf("failed to recomposite logo for size %d: %v", cfg.Width, err)
		} else {
			cfg.Image = comp
			size = cfg.Width
		}
	}
	opts = append(opts, cfg.LogoOption())

	data, err := qr.New(p.engine.Config(), opts...).Render(qr.ExtPNG)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrInvalidText, err)
	}

	p.engine.Update(opts...)
	p.inputs = in
	p.logo = cfg.Image
	p.size = size
	return data, nil
}

// Update changes the inputs of userID and re-renders the preview. Rejected
// inputs are neither rendered nor stored.
func (s *StylerService) Update(ctx context.Context, userID int64, mutate func(in *styler.Inputs)) (*Rendered, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	in := p.inputs
	mutate(&in)
	data, err := s.applyLocked(p, in)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, userID, in); err != nil {
		s.logger.Errorf("(user: %d) failed to save session: %v", userID, err)
	}
	return rendered(p, data), nil
}

// Replace swaps all inputs at once, used when a preset is loaded.
func (s *StylerService) Replace(ctx context.Context, userID int64, in styler.Inputs) (*Rendered, error) {
	return s.Update(ctx, userID, func(cur *styler.Inputs) {
		*cur = in
	})
}

// Reset restores the default inputs and removes the logo.
func (s *StylerService) Reset(ctx context.Context, userID int64) (*Rendered, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.source, p.logo = nil, nil
	if err := s.logos.Clear(ctx, userID); err != nil {
		return nil, err
	}

	in := styler.DefaultInputs(s.assembler.Limits().Default)
	data, err := s.applyLocked(p, in)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, userID, in); err != nil {
		return nil, err
	}
	return rendered(p, data), nil
}

// SetLogo reads, decodes and composites an uploaded logo, then applies it.
// The steps run strictly in order. When a newer pass started in the meantime
// this one is dropped with errorz.ErrLogoSuperseded. On any failure the
// previous logo stays.
func (s *StylerService) SetLogo(ctx context.Context, userID int64, fetch LogoFetcher) (*Rendered, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	gen := p.beginLogoPass()

	raw, err := s.readLogo(ctx, fetch)
	if err != nil {
		return nil, err
	}
	src, err := logo.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrLogoUnreadable, err)
	}
	size := p.Config().Size
	comp, err := logo.Composite(src, size, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrLogoUnreadable, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return nil, errorz.ErrLogoSuperseded
	}
	if cur := p.engine.Config().Size; cur != size {
		if comp, err = logo.Composite(src, cur, 1); err != nil {
			return nil, fmt.Errorf("%w: %v", errorz.ErrLogoUnreadable, err)
		}
		size = cur
	}

	if err := s.logos.Set(ctx, userID, raw); err != nil {
		return nil, fmt.Errorf("failed to save logo: %w", err)
	}
	p.engine.Update(qr.WithLogo(comp.Image, styler.ImageMargin))
	p.source, p.logo, p.size = src, comp, size

	data, err := p.engine.Render(qr.ExtPNG)
	if err != nil {
		return nil, err
	}
	return rendered(p, data), nil
}

func (s *StylerService) readLogo(ctx context.Context, fetch LogoFetcher) ([]byte, error) {
	rc, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrLogoUnreadable, err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if s.maxLogoBytes > 0 {
		r = io.LimitReader(rc, s.maxLogoBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrLogoUnreadable, err)
	}
	if s.maxLogoBytes > 0 && int64(len(raw)) > s.maxLogoBytes {
		return nil, errorz.ErrLogoTooLarge
	}
	if len(raw) == 0 {
		return nil, errorz.ErrLogoUnreadable
	}
	return raw, nil
}

// RemoveLogo clears the logo and cancels any pass still in flight.
func (s *StylerService) RemoveLogo(ctx context.Context, userID int64) (*Rendered, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if err := s.logos.Clear(ctx, userID); err != nil {
		return nil, err
	}
	p.engine.Update(qr.WithLogo(nil, styler.ImageMargin))
	p.source, p.logo = nil, nil

	data, err := p.engine.Render(qr.ExtPNG)
	if err != nil {
		return nil, err
	}
	return rendered(p, data), nil
}

// Render draws the live preview in the requested format.
func (s *StylerService) Render(ctx context.Context, userID int64, ext qr.Extension) ([]byte, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Render(ext)
}

// renderHighRes builds a throwaway renderer from the live inputs at the high
// resolution scale, with the logo recomposited for that scale.
func (s *StylerService) renderHighRes(ctx context.Context, userID int64) ([]byte, error) {
	p, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	in, src := p.inputs, p.source
	p.mu.Unlock()

	cfg := s.assembler.Assemble(in, s.hrScale)
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrInvalidColor, err)
	}
	if src != nil {
		cfg.Image, err = logo.Composite(src, s.assembler.Size(in), s.hrScale)
		if err != nil {
			s.logger.Warnf("(user: %d) high resolution export without logo: %v", userID, err)
		}
	}

	engine := qr.New(qr.Default, append(opts, cfg.LogoOption())...)
	return engine.Render(qr.ExtPNG)
}

// ExportHighRes writes the high resolution code to a temporary artifact. The
// artifact is removed after the exporter's grace delay, the caller must have
// started reading it by then.
func (s *StylerService) ExportHighRes(ctx context.Context, userID int64) (*generator.Artifact, error) {
	data, err := s.renderHighRes(ctx, userID)
	if err != nil {
		return nil, err
	}

	artifact, err := s.exporter.Create(data, string(qr.ExtPNG))
	if err != nil {
		return nil, err
	}
	s.exporter.ScheduleRemove(artifact, func(err error) {
		s.logger.Errorf("(user: %d) %v", userID, err)
	})
	return artifact, nil
}

// EmailExport mails the high resolution code to the given address.
func (s *StylerService) EmailExport(ctx context.Context, userID int64, to string) error {
	if !validator.Email(to) {
		return errorz.ErrInvalidEmail
	}

	data, err := s.renderHighRes(ctx, userID)
	if err != nil {
		return err
	}
	artifact, err := s.exporter.Create(data, string(qr.ExtPNG))
	if err != nil {
		return err
	}
	defer func() {
		if err := artifact.Remove(); err != nil {
			s.logger.Errorf("(user: %d) %v", userID, err)
		}
	}()

	return s.mailer.SendExport(to, artifact.Path, "qr-code.png")
}

func rendered(p *Preview, data []byte) *Rendered {
	return &Rendered{
		PNG:     data,
		Size:    p.engine.Config().Size,
		Inputs:  p.inputs,
		HasLogo: p.logo != nil,
	}
}
