package service

import (
	"image"
	"sync"
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/pkg/logo"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
)

// Preview is the live code of one user. It owns the long-lived renderer and
// the message that shows it.
type Preview struct {
	mu     sync.Mutex
	engine *qr.Instance
	ready  bool
	inputs styler.Inputs

	source image.Image
	logo   *logo.Composited
	// size is the base size logo was composited for.
	size int
	// generation grows with every logo pass, stale passes are dropped.
	generation uint64

	chatID    int64
	messageID int

	// lastUsed is guarded by the registry lock.
	lastUsed time.Time
}

func newPreview() *Preview {
	return &Preview{engine: qr.New(qr.Default)}
}

// Config returns a snapshot of the renderer configuration.
func (p *Preview) Config() qr.Config {
	return p.engine.Config()
}

func (p *Preview) Render(ext qr.Extension) ([]byte, error) {
	return p.engine.Render(ext)
}

// Inputs returns the inputs the preview was last rendered from.
func (p *Preview) Inputs() styler.Inputs {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputs
}

func (p *Preview) HasLogo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logo != nil
}

// SetMessage remembers the message the preview is shown in.
func (p *Preview) SetMessage(chatID int64, messageID int) {
	p.mu.Lock()
	p.chatID, p.messageID = chatID, messageID
	p.mu.Unlock()
}

func (p *Preview) Message() (chatID int64, messageID int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chatID, p.messageID, p.messageID != 0
}

func (p *Preview) beginLogoPass() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	return p.generation
}

// Previews holds one Preview per user. Previews left alone for a while are
// evicted, the next access restores them from the stored session.
type Previews struct {
	mu    sync.Mutex
	items map[int64]*Preview
	now   func() time.Time
}

func NewPreviews() *Previews {
	return &Previews{
		items: make(map[int64]*Preview),
		now:   time.Now,
	}
}

func (r *Previews) Get(userID int64) (*Preview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if ok {
		p.lastUsed = r.now()
	}
	return p, ok
}

// getOrCreate reports whether the preview was created by this call.
func (r *Previews) getOrCreate(userID int64) (*Preview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.items[userID]; ok {
		p.lastUsed = r.now()
		return p, false
	}
	p := newPreview()
	p.lastUsed = r.now()
	r.items[userID] = p
	return p, true
}

// EvictIdle drops the previews not used for longer than idle and returns
// how many were dropped.
func (r *Previews) EvictIdle(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-idle)
	evicted := 0
	for userID, p := range r.items {
		if p.lastUsed.Before(deadline) {
			delete(r.items, userID)
			evicted++
		}
	}
	return evicted
}

func (r *Previews) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
