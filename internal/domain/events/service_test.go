package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memRepo is an in-memory Repository that mirrors the soft-delete and
// uniqueness visibility rules of the mongo implementation.
type memRepo struct {
	mu     sync.Mutex
	events map[string]*Event
}

func newMemRepo() *memRepo {
	return &memRepo{events: make(map[string]*Event)}
}

func (r *memRepo) Insert(_ context.Context, event *Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *event
	stored.ID = primitive.NewObjectID().Hex()
	r.events[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || !event.IsActive {
		return nil, ErrNotFound
	}
	out := *event
	return &out, nil
}

func (r *memRepo) FindActiveByTitleDate(_ context.Context, title string, date time.Time, excludeID string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if !event.IsActive || event.ID == excludeID {
			continue
		}
		if event.Title == title && event.Date.Equal(date) {
			out := *event
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) List(_ context.Context, params ListParams) (ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if !event.IsActive {
			continue
		}
		if params.DateFrom != nil && event.Date.Before(*params.DateFrom) {
			continue
		}
		if params.DateTo != nil && event.Date.After(*params.DateTo) {
			continue
		}
		if len(params.Tags) > 0 && !intersects(event.Tags, params.Tags) {
			continue
		}
		matched = append(matched, *event)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })

	total := int64(len(matched))
	start := int(params.Skip())
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return ListResult{Events: matched[start:end], Total: total}, nil
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (r *memRepo) Update(_ context.Context, id string, fields UpdateFields) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.Title != nil {
		event.Title = *fields.Title
	}
	if fields.Description != nil {
		event.Description = *fields.Description
	}
	if fields.Date != nil {
		event.Date = *fields.Date
	}
	if fields.Location != nil {
		event.Location = *fields.Location
	}
	if fields.Organizer != nil {
		event.Organizer = *fields.Organizer
	}
	if fields.Tags != nil {
		event.Tags = *fields.Tags
	}
	if fields.Capacity != nil {
		event.Capacity = *fields.Capacity
	}
	if fields.IsActive != nil {
		event.IsActive = *fields.IsActive
	}
	event.UpdatedAt = fields.UpdatedAt
	out := *event
	return &out, nil
}

func (r *memRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok || !event.IsActive {
		return ErrNotFound
	}
	event.IsActive = false
	event.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memRepo) stored(id string) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil
	}
	out := *event
	return &out
}

func newTestService(repo Repository) *Service {
	return NewService(repo, zerolog.Nop())
}

func validCreateInput() CreateInput {
	return CreateInput{
		Title:       "GopherCon 2099",
		Description: "Annual conference for Go developers",
		Date:        "2099-12-15T09:00:00",
		Location:    "San Francisco, CA",
		Organizer:   "contact@gophercon.dev",
		Tags:        []string{"Go", " golang ", "conference"},
		Capacity:    500,
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	repo := newMemRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.IsActive)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.Equal(t, []string{"go", "golang", "conference"}, created.Tags)
	require.Equal(t, time.Date(2099, 12, 15, 9, 0, 0, 0, time.UTC), created.Date)

	fetched, err := service.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, fetched)
}

func TestCreateRejectsPastDate(t *testing.T) {
	service := newTestService(newMemRepo())

	for _, date := range []string{
		"2001-01-01T00:00:00",
		"2001-01-01T00:00:00Z",
		"2001-01-01T05:00:00+05:00",
		"2001-01-01",
	} {
		input := validCreateInput()
		input.Date = date

		_, err := service.Create(context.Background(), input)

		var verr ValidationError
		require.ErrorAs(t, err, &verr, "date %q should be rejected", date)
		require.Equal(t, "date", verr.Field)
	}
}

func TestCreateValidatesFields(t *testing.T) {
	service := newTestService(newMemRepo())

	cases := map[string]func(*CreateInput){
		"title":     func(in *CreateInput) { in.Title = "  " },
		"organizer": func(in *CreateInput) { in.Organizer = "not-an-email" },
		"capacity":  func(in *CreateInput) { in.Capacity = 0 },
		"location":  func(in *CreateInput) { in.Location = "" },
	}
	for field, mutate := range cases {
		input := validCreateInput()
		mutate(&input)

		_, err := service.Create(context.Background(), input)

		var verr ValidationError
		require.ErrorAs(t, err, &verr, "field %s", field)
		require.Equal(t, field, verr.Field)
	}
}

func TestCreateDuplicateTitleDateConflicts(t *testing.T) {
	service := newTestService(newMemRepo())

	_, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = service.Create(context.Background(), validCreateInput())
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateAllowsDuplicateAfterDelete(t *testing.T) {
	service := newTestService(newMemRepo())

	first, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.NoError(t, service.Delete(context.Background(), first.ID))

	_, err = service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
}

func TestDeleteSoftDeleteSemantics(t *testing.T) {
	repo := newMemRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID))

	_, err = service.GetByID(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	result, err := service.List(context.Background(), ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, result.Events)
	require.Zero(t, result.Total)

	// Record survives in storage, flagged inactive.
	stored := repo.stored(created.ID)
	require.NotNil(t, stored)
	require.False(t, stored.IsActive)

	// Second delete reports not found.
	require.ErrorIs(t, service.Delete(context.Background(), created.ID), ErrNotFound)
}

func TestDeleteInvalidID(t *testing.T) {
	service := newTestService(newMemRepo())

	require.ErrorIs(t, service.Delete(context.Background(), "not-an-id"), ErrInvalidID)
}

func TestGetByIDErrors(t *testing.T) {
	service := newTestService(newMemRepo())

	_, err := service.GetByID(context.Background(), "not-an-id")
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = service.GetByID(context.Background(), primitive.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEmptyPartialIsNoOp(t *testing.T) {
	service := newTestService(newMemRepo())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, UpdateInput{})
	require.NoError(t, err)
	require.Equal(t, created, updated)
	require.Equal(t, created.UpdatedAt, updated.UpdatedAt)
}

func TestUpdateAppliesSuppliedFieldsOnly(t *testing.T) {
	service := newTestService(newMemRepo())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	capacity := 750
	updated, err := service.Update(context.Background(), created.ID, UpdateInput{Capacity: &capacity})
	require.NoError(t, err)
	require.Equal(t, 750, updated.Capacity)
	require.Equal(t, created.Title, updated.Title)
	require.Equal(t, created.Date, updated.Date)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateTitleCollisionConflicts(t *testing.T) {
	service := newTestService(newMemRepo())

	first, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	secondInput := validCreateInput()
	secondInput.Title = "Different Summit"
	second, err := service.Create(context.Background(), secondInput)
	require.NoError(t, err)

	_, err = service.Update(context.Background(), second.ID, UpdateInput{Title: &first.Title})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateSameEventKeepsOwnTitleDate(t *testing.T) {
	service := newTestService(newMemRepo())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	// Re-submitting its own title must not collide with itself.
	updated, err := service.Update(context.Background(), created.ID, UpdateInput{Title: &created.Title})
	require.NoError(t, err)
	require.Equal(t, created.Title, updated.Title)
}

// capacityOnlyRepo fails the test if the uniqueness check runs.
type capacityOnlyRepo struct {
	*memRepo
	t *testing.T
}

func (r capacityOnlyRepo) FindActiveByTitleDate(_ context.Context, _ string, _ time.Time, excludeID string) (*Event, error) {
	if excludeID != "" {
		r.t.Fatal("uniqueness check must not run for capacity-only updates")
	}
	return nil, ErrNotFound
}

func TestUpdateCapacityOnlySkipsUniquenessCheck(t *testing.T) {
	repo := newMemRepo()
	seed := newTestService(repo)
	created, err := seed.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	service := newTestService(capacityOnlyRepo{memRepo: repo, t: t})
	capacity := 42
	_, err = service.Update(context.Background(), created.ID, UpdateInput{Capacity: &capacity})
	require.NoError(t, err)
}

func TestUpdateValidatesSuppliedFields(t *testing.T) {
	service := newTestService(newMemRepo())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	bad := "nope"
	_, err = service.Update(context.Background(), created.ID, UpdateInput{Organizer: &bad})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)

	past := "2001-01-01T00:00:00"
	_, err = service.Update(context.Background(), created.ID, UpdateInput{Date: &past})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "date", verr.Field)
}

func TestUpdateErrors(t *testing.T) {
	service := newTestService(newMemRepo())

	_, err := service.Update(context.Background(), "bogus", UpdateInput{})
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = service.Update(context.Background(), primitive.NewObjectID().Hex(), UpdateInput{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPageWindowAndTotal(t *testing.T) {
	service := newTestService(newMemRepo())

	for i := 0; i < 7; i++ {
		input := validCreateInput()
		input.Title = input.Title + " " + string(rune('A'+i))
		input.Date = time.Date(2099, 12, 1+i, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
		_, err := service.Create(context.Background(), input)
		require.NoError(t, err)
	}

	result, err := service.List(context.Background(), ListParams{Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, result.Events, 5)
	require.EqualValues(t, 7, result.Total)

	// Sorted ascending by date, second page holds the remainder.
	require.True(t, result.Events[0].Date.Before(result.Events[4].Date))

	second, err := service.List(context.Background(), ListParams{Page: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, second.Events, 2)
	require.EqualValues(t, 7, second.Total)
}

func TestListFilters(t *testing.T) {
	service := newTestService(newMemRepo())

	early := validCreateInput()
	early.Title = "Early Meetup"
	early.Date = "2099-01-10T18:00:00"
	early.Tags = []string{"python"}
	_, err := service.Create(context.Background(), early)
	require.NoError(t, err)

	late := validCreateInput()
	late.Title = "Late Summit"
	late.Date = "2099-06-10T18:00:00"
	late.Tags = []string{"go", "cloud"}
	_, err = service.Create(context.Background(), late)
	require.NoError(t, err)

	from := time.Date(2099, 3, 1, 0, 0, 0, 0, time.UTC)
	result, err := service.List(context.Background(), ListParams{Page: 1, Limit: 10, DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.Equal(t, "Late Summit", result.Events[0].Title)

	result, err = service.List(context.Background(), ListParams{Page: 1, Limit: 10, Tags: []string{"python"}})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.Equal(t, "Early Meetup", result.Events[0].Title)

	result, err = service.List(context.Background(), ListParams{Page: 1, Limit: 10, Tags: []string{"rust"}})
	require.NoError(t, err)
	require.Empty(t, result.Events)
	require.Zero(t, result.Total)
}

func TestListEmptyIsNotAnError(t *testing.T) {
	service := newTestService(newMemRepo())

	result, err := service.List(context.Background(), ListParams{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, result.Events)
}

// repoErr verifies storage failures propagate instead of masquerading as
// business outcomes.
type repoErr struct{ *memRepo }

func (repoErr) FindActiveByTitleDate(context.Context, string, time.Time, string) (*Event, error) {
	return nil, errors.New("connection reset")
}

func TestCreateSurfacesStoreFailure(t *testing.T) {
	service := newTestService(repoErr{memRepo: newMemRepo()})

	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrConflict)
}
