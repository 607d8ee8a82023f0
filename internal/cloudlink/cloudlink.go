// Package cloudlink rewrites cloud-storage share links (Google Drive,
// Dropbox, Box) into direct-download URLs the signage service can fetch.
// Everything here is pure string manipulation; no network calls are made.
package cloudlink

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	driveFileRe = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
	driveOpenRe = regexp.MustCompile(`drive\.google\.com/open\?id=([a-zA-Z0-9_-]+)`)
	boxShareRe  = regexp.MustCompile(`(?:app\.)?box\.com/s/([a-zA-Z0-9]+)`)
)

// Resolve maps a share link to a direct-download URL. URLs that are not
// recognized cloud-storage share links pass through unchanged.
func Resolve(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL format")
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.Contains(host, "drive.google.com"):
		return resolveGoogleDrive(rawURL)
	case strings.Contains(host, "dropbox.com"):
		return resolveDropbox(parsed)
	case strings.Contains(host, "box.com"):
		return resolveBox(rawURL)
	default:
		return rawURL, nil
	}
}

// resolveGoogleDrive extracts the file id from either share-link form and
// builds the uc?export=download URL.
func resolveGoogleDrive(rawURL string) (string, error) {
	if m := driveFileRe.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1], nil
	}
	if m := driveOpenRe.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1], nil
	}
	return "", fmt.Errorf("unable to resolve Google Drive link: no file ID found")
}

// resolveDropbox forces the dl=1 direct-download flag on a shared link.
func resolveDropbox(parsed *url.URL) (string, error) {
	if !strings.Contains(parsed.Path, "/s/") && !strings.Contains(parsed.Path, "/scl/") {
		return "", fmt.Errorf("unable to resolve Dropbox link: not a shared link")
	}

	query := parsed.Query()
	query.Set("dl", "1")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// resolveBox maps a shared link to the static direct-download form.
func resolveBox(rawURL string) (string, error) {
	m := boxShareRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("unable to resolve Box link: not a shared link")
	}
	return "https://app.box.com/shared/static/" + m[1], nil
}

// IsCloudLink reports whether the URL points at a supported cloud-storage
// provider.
func IsCloudLink(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	return strings.Contains(host, "drive.google.com") ||
		strings.Contains(host, "dropbox.com") ||
		strings.Contains(host, "box.com")
}
