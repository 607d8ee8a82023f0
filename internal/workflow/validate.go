package workflow

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AllowedMimeTypes lists the upload formats the signage service accepts,
// grouped by kind.
var AllowedMimeTypes = map[string][]string{
	"images":    {"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
	"videos":    {"video/mp4", "video/webm", "video/ogg"},
	"documents": {"application/pdf"},
}

// allAllowedMimeTypes flattens AllowedMimeTypes in a stable order.
func allAllowedMimeTypes() []string {
	var all []string
	for _, group := range []string{"images", "videos", "documents"} {
		all = append(all, AllowedMimeTypes[group]...)
	}
	return all
}

// ValidateFileType rejects MIME types the service cannot display.
func ValidateFileType(mimeType string) error {
	if mimeType == "" {
		return fmt.Errorf("missing file type")
	}

	allowed := allAllowedMimeTypes()
	for _, t := range allowed {
		if t == mimeType {
			return nil
		}
	}
	return fmt.Errorf("invalid file type: %s. Allowed types: %s", mimeType, strings.Join(allowed, ", "))
}

// ValidateDuration requires a positive display duration in seconds.
func ValidateDuration(duration int) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be a positive number")
	}
	return nil
}

// ParseDate parses an optional RFC 3339 or date-only input value. An empty
// string yields a zero time and no error.
func ParseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s format: %s", field, value)
}

// ValidateDateRange checks that an optional scheduling window is ordered.
func ValidateDateRange(startDate, endDate string) error {
	start, err := ParseDate("start date", startDate)
	if err != nil {
		return err
	}
	end, err := ParseDate("end date", endDate)
	if err != nil {
		return err
	}

	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}

// ValidateFileURL requires a well-formed absolute http(s) URL.
func ValidateFileURL(fileURL string) error {
	if strings.TrimSpace(fileURL) == "" {
		return fmt.Errorf("file URL is required")
	}

	parsed, err := url.Parse(fileURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid file URL format")
	}
	return nil
}

// ValidateTitle requires a non-blank asset title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
