package events

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength    = 200
	maxLocationLength = 200
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CreateInput is the raw candidate for a new event. Date stays a string
// until validation so that timezone-less inputs can be interpreted as UTC.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Organizer   string   `json:"organizer"`
	Tags        []string `json:"tags"`
	Capacity    int      `json:"capacity"`
}

// UpdateInput is a partial update. Every field is a pointer so that a field
// absent from the request body decodes to nil and is left untouched.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Location    *string   `json:"location"`
	Organizer   *string   `json:"organizer"`
	Tags        *[]string `json:"tags"`
	Capacity    *int      `json:"capacity"`
	IsActive    *bool     `json:"is_active"`
}

func (in UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Date == nil &&
		in.Location == nil && in.Organizer == nil && in.Tags == nil &&
		in.Capacity == nil && in.IsActive == nil
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseEventDate accepts RFC 3339 timestamps as well as timezone-less
// datetime and date-only forms; values without an offset are taken as UTC.
func ParseEventDate(field string, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ValidationError{Field: field, Message: "required"}
	}
	for _, layout := range eventDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ValidationError{Field: field, Message: "must be an ISO8601 datetime"}
}

func validateDateNotPast(field string, date time.Time, now time.Time) error {
	if date.Before(now.UTC()) {
		return ValidationError{Field: field, Message: "must not be in the past"}
	}
	return nil
}

// NormalizeTags trims, lowercases, drops empties, and collapses duplicates,
// keeping first-occurrence order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

func validateTitle(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ValidationError{Field: field, Message: "required"}
	}
	if utf8.RuneCountInString(value) > maxTitleLength {
		return "", ValidationError{Field: field, Message: "too long"}
	}
	return value, nil
}

func validateLocation(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ValidationError{Field: field, Message: "required"}
	}
	if utf8.RuneCountInString(value) > maxLocationLength {
		return "", ValidationError{Field: field, Message: "too long"}
	}
	return value, nil
}

func validateDescription(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ValidationError{Field: field, Message: "required"}
	}
	return value, nil
}

func validateCapacity(field string, value int) error {
	if value <= 0 {
		return ValidationError{Field: field, Message: "must be greater than zero"}
	}
	return nil
}
