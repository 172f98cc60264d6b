// Package player is the display-side playback loop: it polls the playlist
// endpoint, keeps the on-air asset on disk and falls back to a local asset
// when nothing is scheduled or the server is unreachable.
package player

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

type State int

const (
	StateLoading State = iota
	StateIdle
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status is a snapshot of what the player is showing.
type Status struct {
	State State
	Slot  *model.Slot
	// Path is the file the viewer should show; empty when nothing is on
	// screen, including a missing fallback.
	Path string
}

type Config struct {
	DisplayID *uuid.UUID
	AssetDir  string
	// FallbackName is a file in AssetDir shown when idle or offline.
	FallbackName string
	// CurrentName is the file in AssetDir the viewer watches.
	CurrentName string
}

type Player struct {
	cfg    Config
	client *Client
	now    func() time.Time

	mu     sync.Mutex
	status Status
	url    string

	// OnChange, when set, is called after every state transition.
	OnChange func(Status)
}

func New(cfg Config, client *Client) (*Player, error) {
	if cfg.FallbackName == "" {
		cfg.FallbackName = "fallback.jpg"
	}
	if cfg.CurrentName == "" {
		cfg.CurrentName = "current"
	}
	if err := os.MkdirAll(filepath.Join(cfg.AssetDir, "cache"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &Player{
		cfg:    cfg,
		client: client,
		now:    time.Now,
		status: Status{State: StateLoading},
	}, nil
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) currentPath() string  { return filepath.Join(p.cfg.AssetDir, p.cfg.CurrentName) }
func (p *Player) fallbackPath() string { return filepath.Join(p.cfg.AssetDir, p.cfg.FallbackName) }

// cachePath names a downloaded creative by a hash of its URL.
func (p *Player) cachePath(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(u.Path)
	}
	return filepath.Join(p.cfg.AssetDir, "cache", hex.EncodeToString(sum[:8])+ext)
}

// Tick runs one poll: fetch the playlist, update the on-air asset and
// prefetch the next creative once it is inside its prefetch window.
func (p *Player) Tick(ctx context.Context) {
	playlist, err := p.client.Playlist(ctx, p.cfg.DisplayID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("playlist fetch failed")
		p.showFallback()
		return
	}

	if playlist.Slot == nil {
		p.showFallback()
	} else if err := p.play(ctx, playlist.Slot); err != nil {
		log.Error().Err(err).Str("url", playlist.Slot.Creative.URL).Msg("download failed")
		p.showFallback()
	}

	if next := playlist.Next; next != nil && !p.now().Before(next.StartsAt.Add(-prefetchWindow(playlist.Slot))) {
		if _, err := p.fetch(ctx, next.Creative.URL); err != nil {
			log.Warn().Err(err).Str("url", next.Creative.URL).Msg("prefetch failed")
		}
	}

	p.prune(playlist)
}

// prune removes cached creatives the playlist no longer references. It only
// runs after a successful fetch, so an outage keeps the cache intact.
func (p *Player) prune(playlist model.Playlist) {
	keep := map[string]bool{}
	if playlist.Slot != nil {
		keep[filepath.Base(p.cachePath(playlist.Slot.Creative.URL))] = true
	}
	if playlist.Next != nil {
		keep[filepath.Base(p.cachePath(playlist.Next.Creative.URL))] = true
	}

	dir := filepath.Join(p.cfg.AssetDir, "cache")
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("cache listing failed")
		return
	}
	for _, e := range entries {
		if e.IsDir() || keep[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("cache prune failed")
		}
	}
}

// prefetchWindow uses the server's advertised window, or ten minutes.
func prefetchWindow(slot *model.Slot) time.Duration {
	if slot != nil && slot.PrefetchSeconds > 0 {
		return time.Duration(slot.PrefetchSeconds) * time.Second
	}
	return 10 * time.Minute
}

func (p *Player) play(ctx context.Context, slot *model.Slot) error {
	p.mu.Lock()
	same := p.status.State == StatePlaying && p.url == slot.Creative.URL
	p.mu.Unlock()
	if same {
		p.setStatus(Status{State: StatePlaying, Slot: slot, Path: p.currentPath()}, slot.Creative.URL)
		return nil
	}

	cached, err := p.fetch(ctx, slot.Creative.URL)
	if err != nil {
		return err
	}
	if err := copyAtomic(cached, p.currentPath()); err != nil {
		return err
	}
	log.Info().Str("slot", slot.ID.String()).Str("url", slot.Creative.URL).Msg("playing")
	p.setStatus(Status{State: StatePlaying, Slot: slot, Path: p.currentPath()}, slot.Creative.URL)
	return nil
}

// fetch downloads url into the cache unless it is already there.
func (p *Player) fetch(ctx context.Context, rawURL string) (string, error) {
	dest := p.cachePath(rawURL)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	err := writeAtomic(dest, func(w io.Writer) error {
		return p.client.Download(ctx, rawURL, w)
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (p *Player) showFallback() {
	p.mu.Lock()
	wasIdle := p.status.State == StateIdle
	p.mu.Unlock()

	shown := ""
	if err := copyAtomic(p.fallbackPath(), p.currentPath()); err != nil {
		if !wasIdle {
			log.Warn().Err(err).Str("fallback", p.fallbackPath()).Msg("fallback not available")
		}
	} else {
		shown = p.currentPath()
	}
	p.setStatus(Status{State: StateIdle, Path: shown}, "")
}

func (p *Player) setStatus(s Status, rawURL string) {
	p.mu.Lock()
	changed := p.status.State != s.State || p.url != rawURL
	p.status = s
	p.url = rawURL
	cb := p.OnChange
	p.mu.Unlock()
	if changed && cb != nil {
		cb(s)
	}
}

// writeAtomic writes through a temp file in dest's directory and renames it
// into place, so readers never observe a partial file.
func writeAtomic(dest string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func copyAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeAtomic(dest, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
