package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

// memStore serialises check+insert under one mutex, standing in for the
// row lock and exclusion constraint of the Postgres store.
type memStore struct {
	mu       sync.Mutex
	displays map[uuid.UUID]model.Display
	media    map[uuid.UUID]model.MediaAsset
	bookings map[uuid.UUID]model.Booking
	// widen the window between check and insert to provoke races
	insertDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		displays: map[uuid.UUID]model.Display{},
		media:    map[uuid.UUID]model.MediaAsset{},
		bookings: map[uuid.UUID]model.Booking{},
	}
}

func (s *memStore) addDisplay(name string, main bool) model.Display {
	d := model.Display{ID: uuid.New(), Name: name, Timezone: "UTC", IsMain: main}
	s.displays[d.ID] = d
	return d
}

func (s *memStore) addMedia(owner uuid.UUID, filename, typ string) model.MediaAsset {
	m := model.MediaAsset{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Type:        typ,
		StoragePath: owner.String() + "/" + filename,
		Filename:    filename,
		FileSize:    2048,
	}
	s.media[m.ID] = m
	return m
}

func (s *memStore) addBooking(displayID, mediaID uuid.UUID, start, end time.Time) model.Booking {
	b := model.Booking{
		ID:           uuid.New(),
		UserID:       s.media[mediaID].OwnerUserID,
		DisplayID:    displayID,
		MediaAssetID: mediaID,
		StartTime:    start.UTC(),
		EndTime:      end.UTC(),
	}
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) GetDisplayByID(_ context.Context, id uuid.UUID) (model.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.displays[id]
	if !ok {
		return model.Display{}, ErrDisplayNotFound
	}
	return d, nil
}

func (s *memStore) GetMainDisplay(_ context.Context) (model.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.displays {
		if d.IsMain {
			return d, nil
		}
	}
	return model.Display{}, ErrNoMainDisplay
}

func (s *memStore) GetMediaByID(_ context.Context, id uuid.UUID) (model.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok {
		return model.MediaAsset{}, ErrMediaNotFound
	}
	return m, nil
}

func (s *memStore) intervalsFor(displayID uuid.UUID) []Interval {
	var out []Interval
	for _, b := range s.bookings {
		if b.DisplayID == displayID {
			out = append(out, Interval{Start: b.StartTime, End: b.EndTime})
		}
	}
	return out
}

func (s *memStore) HasBookingConflict(_ context.Context, displayID uuid.UUID, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HasConflict(s.intervalsFor(displayID), Interval{Start: start, End: end}), nil
}

func (s *memStore) CreateBookingExclusive(_ context.Context, b model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if HasConflict(s.intervalsFor(b.DisplayID), Interval{Start: b.StartTime, End: b.EndTime}) {
		return model.Booking{}, ErrSlotTaken
	}
	if s.insertDelay > 0 {
		time.Sleep(s.insertDelay)
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now().UTC()
	s.bookings[b.ID] = b
	return b, nil
}

func (s *memStore) GetBookingByID(_ context.Context, id uuid.UUID) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (s *memStore) DeleteBooking(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *memStore) details(displayID uuid.UUID) []model.BookingDetail {
	var out []model.BookingDetail
	for _, b := range s.bookings {
		if b.DisplayID != displayID {
			continue
		}
		m := s.media[b.MediaAssetID]
		out = append(out, model.BookingDetail{
			Booking:       b,
			DisplayName:   s.displays[displayID].Name,
			Filename:      m.Filename,
			MediaType:     m.Type,
			StoragePath:   m.StoragePath,
			FileSize:      m.FileSize,
			MediaDuration: m.Duration,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *memStore) CurrentBooking(_ context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectCurrent(s.details(displayID), at), nil
}

func (s *memStore) NextBooking(_ context.Context, displayID uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectNext(s.details(displayID), at), nil
}

func (s *memStore) countFor(displayID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intervalsFor(displayID))
}

type staticURLs struct{ base string }

func (u staticURLs) PublicURL(path string) string { return u.base + "/" + path }

type recordingAnnouncer struct {
	mu     sync.Mutex
	events []BookingEvent
	err    error
}

func (r *recordingAnnouncer) Announce(_ context.Context, ev BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}
