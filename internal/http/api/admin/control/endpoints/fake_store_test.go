package endpoints

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// fakeStore implements the parts of db.Store the control endpoints use.
// Calling anything else panics on the nil embedded interface.
type fakeStore struct {
	db.Store

	mu       sync.Mutex
	users    map[uuid.UUID]*model.User
	displays map[uuid.UUID]model.Display
	media    map[uuid.UUID]model.MediaAsset
	bookings map[uuid.UUID]model.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]*model.User{},
		displays: map[uuid.UUID]model.Display{},
		media:    map[uuid.UUID]model.MediaAsset{},
		bookings: map[uuid.UUID]model.Booking{},
	}
}

func (f *fakeStore) addUser(role string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: role}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addDisplay(tz string) model.Display {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := model.Display{ID: uuid.New(), Name: "Lobby", ActivationCode: uuid.NewString(), Timezone: tz}
	f.displays[d.ID] = d
	return d
}

func (f *fakeStore) addMedia(owner uuid.UUID) model.MediaAsset {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := model.MediaAsset{ID: uuid.New(), OwnerUserID: owner, Type: model.MediaTypeImage, StoragePath: owner.String() + "/1.png", Filename: "ad.png"}
	f.media[m.ID] = m
	return m
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, schedule.ErrUserNotFound
}

func (f *fakeStore) CreateDisplay(_ context.Context, d model.Display) (model.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.displays {
		if x.ActivationCode == d.ActivationCode {
			return model.Display{}, schedule.ErrDuplicate
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.displays[d.ID] = d
	return d, nil
}

func (f *fakeStore) GetDisplayByID(_ context.Context, id uuid.UUID) (model.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.displays[id]; ok {
		return d, nil
	}
	return model.Display{}, schedule.ErrDisplayNotFound
}

func (f *fakeStore) ListDisplays(_ context.Context) ([]model.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Display, 0, len(f.displays))
	for _, d := range f.displays {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) UpdateDisplay(_ context.Context, id uuid.UUID, name, timezone, activationCode *string) (model.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.displays[id]
	if !ok {
		return model.Display{}, schedule.ErrDisplayNotFound
	}
	if timezone != nil && *timezone != d.Timezone {
		for _, b := range f.bookings {
			if b.DisplayID == id {
				return model.Display{}, schedule.ErrTimezoneLocked
			}
		}
		d.Timezone = *timezone
	}
	if name != nil {
		d.Name = *name
	}
	if activationCode != nil {
		d.ActivationCode = *activationCode
	}
	f.displays[id] = d
	return d, nil
}

func (f *fakeStore) SetMainDisplay(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.displays[id]; !ok {
		return schedule.ErrDisplayNotFound
	}
	for k, d := range f.displays {
		d.IsMain = k == id
		f.displays[k] = d
	}
	return nil
}

func (f *fakeStore) CreateMedia(_ context.Context, m model.MediaAsset) (model.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	f.media[m.ID] = m
	return m, nil
}

func (f *fakeStore) GetMediaByID(_ context.Context, id uuid.UUID) (model.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.media[id]; ok {
		return m, nil
	}
	return model.MediaAsset{}, schedule.ErrMediaNotFound
}

func (f *fakeStore) ListMediaByOwner(_ context.Context, owner uuid.UUID) ([]model.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MediaAsset
	for _, m := range f.media {
		if m.OwnerUserID == owner {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) MediaInUse(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.MediaAssetID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteMedia(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.media[id]; !ok {
		return schedule.ErrMediaNotFound
	}
	delete(f.media, id)
	return nil
}

func (f *fakeStore) overlaps(displayID uuid.UUID, iv schedule.Interval) bool {
	var existing []schedule.Interval
	for _, b := range f.bookings {
		if b.DisplayID == displayID {
			existing = append(existing, schedule.Interval{Start: b.StartTime, End: b.EndTime})
		}
	}
	return schedule.HasConflict(existing, iv)
}

func (f *fakeStore) HasBookingConflict(_ context.Context, displayID uuid.UUID, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlaps(displayID, schedule.Interval{Start: start, End: end}), nil
}

func (f *fakeStore) CreateBookingExclusive(_ context.Context, b model.Booking) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlaps(b.DisplayID, schedule.Interval{Start: b.StartTime, End: b.EndTime}) {
		return model.Booking{}, schedule.ErrSlotTaken
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeStore) GetBookingByID(_ context.Context, id uuid.UUID) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return model.Booking{}, schedule.ErrBookingNotFound
}

func (f *fakeStore) DeleteBooking(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return schedule.ErrBookingNotFound
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeStore) ListBookingsByDisplay(_ context.Context, displayID uuid.UUID) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.DisplayID == displayID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) ListBookingsByUser(_ context.Context, userID uuid.UUID) ([]model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		out = append(out, model.BookingDetail{
			Booking:     b,
			DisplayName: f.displays[b.DisplayID].Name,
			Filename:    f.media[b.MediaAssetID].Filename,
			MediaType:   f.media[b.MediaAssetID].Type,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
