package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventbase/server/internal/domain/ids"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "events").Logger(),
		validator: validator.New(),
	}
}

// Create validates the candidate, rejects duplicates of an active
// (title, date) pair, and persists the event with service-assigned
// timestamps and is_active=true.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Event, error) {
	now := time.Now().UTC()

	title, err := validateTitle("title", input.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription("description", input.Description)
	if err != nil {
		return nil, err
	}
	date, err := ParseEventDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if err := validateDateNotPast("date", date, now); err != nil {
		return nil, err
	}
	location, err := validateLocation("location", input.Location)
	if err != nil {
		return nil, err
	}
	organizer, err := s.validateOrganizer("organizer", input.Organizer)
	if err != nil {
		return nil, err
	}
	if err := validateCapacity("capacity", input.Capacity); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveByTitleDate(ctx, title, date, "")
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	event := &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Organizer:   organizer,
		Tags:        NormalizeTags(input.Tags),
		Capacity:    input.Capacity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Insert(ctx, event)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", created.ID).Str("title", created.Title).Msg("event created")
	return created, nil
}

// List returns the requested page window plus the full filtered count.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	if err := ids.Validate(id); err != nil {
		return nil, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. An empty partial returns the current
// entity unchanged with no updated_at bump. When title or date is supplied,
// uniqueness of the effective (title, date) pair is re-checked against
// other active events.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Event, error) {
	if err := ids.Validate(id); err != nil {
		return nil, ErrInvalidID
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return current, nil
	}

	now := time.Now().UTC()
	fields, err := s.validateUpdate(input, now)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil || fields.Date != nil {
		title := current.Title
		if fields.Title != nil {
			title = *fields.Title
		}
		date := current.Date
		if fields.Date != nil {
			date = *fields.Date
		}
		existing, err := s.repo.FindActiveByTitleDate(ctx, title, date, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		if existing != nil {
			return nil, ErrConflict
		}
	}

	fields.UpdatedAt = now
	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", id).Msg("event updated")
	return updated, nil
}

// Delete soft-deletes an active event. Already-deleted or absent events
// surface as ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ids.Validate(id); err != nil {
		return ErrInvalidID
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id).Msg("event soft-deleted")
	return nil
}

func (s *Service) validateUpdate(input UpdateInput, now time.Time) (UpdateFields, error) {
	var fields UpdateFields

	if input.Title != nil {
		title, err := validateTitle("title", *input.Title)
		if err != nil {
			return UpdateFields{}, err
		}
		fields.Title = &title
	}
	if input.Description != nil {
		description, err := validateDescription("description", *input.Description)
		if err != nil {
			return UpdateFields{}, err
		}
		fields.Description = &description
	}
	if input.Date != nil {
		date, err := ParseEventDate("date", *input.Date)
		if err != nil {
			return UpdateFields{}, err
		}
		if err := validateDateNotPast("date", date, now); err != nil {
			return UpdateFields{}, err
		}
		fields.Date = &date
	}
	if input.Location != nil {
		location, err := validateLocation("location", *input.Location)
		if err != nil {
			return UpdateFields{}, err
		}
		fields.Location = &location
	}
	if input.Organizer != nil {
		organizer, err := s.validateOrganizer("organizer", *input.Organizer)
		if err != nil {
			return UpdateFields{}, err
		}
		fields.Organizer = &organizer
	}
	if input.Tags != nil {
		tags := NormalizeTags(*input.Tags)
		if tags == nil {
			tags = []string{}
		}
		fields.Tags = &tags
	}
	if input.Capacity != nil {
		if err := validateCapacity("capacity", *input.Capacity); err != nil {
			return UpdateFields{}, err
		}
		fields.Capacity = input.Capacity
	}
	fields.IsActive = input.IsActive

	return fields, nil
}

func (s *Service) validateOrganizer(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if err := s.validator.Var(value, "required,email"); err != nil {
		return "", ValidationError{Field: field, Message: "must be a valid email address"}
	}
	return value, nil
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseListParams decodes list query parameters, enforcing page >= 1 and
// 1 <= limit <= 100 before anything reaches the query builder.
func ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: defaultListLimit}

	page, err := parsePositiveInt(values, "page", 1)
	if err != nil {
		return params, err
	}
	params.Page = page

	limit, err := parsePositiveInt(values, "limit", defaultListLimit)
	if err != nil {
		return params, err
	}
	if limit > maxListLimit {
		return params, FilterError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxListLimit)}
	}
	params.Limit = limit

	dateFrom, err := parseFilterDate("date_from", values.Get("date_from"))
	if err != nil {
		return params, err
	}
	dateTo, err := parseFilterDate("date_to", values.Get("date_to"))
	if err != nil {
		return params, err
	}
	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		return params, FilterError{Field: "date_to", Message: "must be on or after date_from"}
	}
	params.DateFrom = dateFrom
	params.DateTo = dateTo

	params.Tags = parseTagsFilter(values.Get("tags"))

	return params, nil
}

func parsePositiveInt(values url.Values, field string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, FilterError{Field: field, Message: "must be a number"}
	}
	if parsed < 1 {
		return 0, FilterError{Field: field, Message: "must be at least 1"}
	}
	return parsed, nil
}

func parseFilterDate(field string, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := ParseEventDate(field, value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be an ISO8601 datetime"}
	}
	return &parsed, nil
}

// parseTagsFilter splits the comma-separated tags value and normalizes each
// entry the same way stored tags are normalized, so matching stays
// case-insensitive.
func parseTagsFilter(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return NormalizeTags(strings.Split(value, ","))
}
