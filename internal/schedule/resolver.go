package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

const (
	// PrefetchWindow is how long before a slot starts the player should
	// begin downloading its asset.
	PrefetchWindow = 10 * time.Minute

	// PlaylistVersion is reserved for cache-busting and currently constant.
	PlaylistVersion = 1
)

// PlaylistSource is the read side the resolver queries.
type PlaylistSource interface {
	GetMainDisplay(ctx context.Context) (model.Display, error)
	GetDisplayByID(ctx context.Context, id uuid.UUID) (model.Display, error)
	// CurrentBooking returns the booking with the latest start among those
	// with start <= at <= end, or nil.
	CurrentBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error)
	// NextBooking returns the booking with the earliest start after at, or nil.
	NextBooking(ctx context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error)
}

// URLResolver turns a storage path into a URL a display can fetch.
type URLResolver interface {
	PublicURL(storagePath string) string
}

type Resolver struct {
	source PlaylistSource
	urls   URLResolver
	now    func() time.Time
}

func NewResolver(source PlaylistSource, urls URLResolver) *Resolver {
	return &Resolver{source: source, urls: urls, now: time.Now}
}

// WithClock replaces the resolver's time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// ResolveDisplay returns the display a playlist request targets: the given id,
// or the main display when id is nil.
func (r *Resolver) ResolveDisplay(ctx context.Context, displayID *uuid.UUID) (model.Display, error) {
	if displayID == nil {
		return r.source.GetMainDisplay(ctx)
	}
	return r.source.GetDisplayByID(ctx, *displayID)
}

// ResolvePlaylist computes the slot on air and the one after it. It only
// reads, so repeated polling is safe.
func (r *Resolver) ResolvePlaylist(ctx context.Context, displayID *uuid.UUID) (model.Playlist, error) {
	display, err := r.ResolveDisplay(ctx, displayID)
	if err != nil {
		return model.Playlist{}, err
	}

	now := r.now().UTC()
	var current, next *model.BookingDetail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = r.source.CurrentBooking(gctx, display.ID, now)
		return err
	})
	g.Go(func() error {
		var err error
		next, err = r.source.NextBooking(gctx, display.ID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Playlist{}, err
	}

	var out model.Playlist
	if current != nil {
		out.Slot = r.buildSlot(display.ID, *current)
	}
	if next != nil {
		out.Next = &model.NextSlot{
			StartsAt: next.StartTime.UTC(),
			EndsAt:   next.EndTime.UTC(),
			Creative: r.buildCreative(*next),
		}
	}
	return out, nil
}

func (r *Resolver) buildSlot(displayID uuid.UUID, b model.BookingDetail) *model.Slot {
	return &model.Slot{
		ID:              b.ID,
		DisplayID:       displayID,
		StartsAt:        b.StartTime.UTC(),
		EndsAt:          b.EndTime.UTC(),
		ReadyAt:         b.StartTime.UTC().Add(-PrefetchWindow),
		PrefetchSeconds: int(PrefetchWindow / time.Second),
		Creative:        r.buildCreative(b),
		PlaylistVersion: PlaylistVersion,
	}
}

func (r *Resolver) buildCreative(b model.BookingDetail) model.Creative {
	c := model.Creative{
		Type:        b.MediaType,
		URL:         r.urls.PublicURL(b.StoragePath),
		ContentType: ContentTypeFor(b.Filename),
		Bytes:       b.FileSize,
	}
	if b.MediaDuration != nil {
		d := *b.MediaDuration
		c.DurationSeconds = &d
	}
	return c
}

// SelectCurrent picks, from an arbitrary list, the booking with the latest
// start among those with start <= now <= end.
func SelectCurrent(bookings []model.BookingDetail, now time.Time) *model.BookingDetail {
	var best *model.BookingDetail
	for i := range bookings {
		b := &bookings[i]
		if b.StartTime.After(now) || b.EndTime.Before(now) {
			continue
		}
		if best == nil || b.StartTime.After(best.StartTime) {
			best = b
		}
	}
	return best
}

// SelectNext picks the booking with the earliest start strictly after now.
func SelectNext(bookings []model.BookingDetail, now time.Time) *model.BookingDetail {
	var best *model.BookingDetail
	for i := range bookings {
		b := &bookings[i]
		if !b.StartTime.After(now) {
			continue
		}
		if best == nil || b.StartTime.Before(best.StartTime) {
			best = b
		}
	}
	return best
}
