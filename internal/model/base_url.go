package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/scraps/internal/apperr"
)

// BaseURL is an absolute URL whose path always ends with a slash.
type BaseURL struct {
	u *url.URL
}

// ParseBaseURL parses raw and normalises its path to end with "/".
func ParseBaseURL(raw string) (BaseURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{}, fmt.Errorf("base url %q: %w: %w", raw, apperr.ErrParse, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return BaseURL{}, fmt.Errorf("base url %q: %w: must be absolute", raw, apperr.ErrParse)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return BaseURL{u: u}, nil
}

// MustParseBaseURL is ParseBaseURL that panics on error. Intended for tests
// and constants.
func MustParseBaseURL(raw string) BaseURL {
	b, err := ParseBaseURL(raw)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the normalised URL.
func (b BaseURL) String() string {
	if b.u == nil {
		return "/"
	}
	return b.u.String()
}

// URL returns a copy of the underlying URL.
func (b BaseURL) URL() *url.URL {
	if b.u == nil {
		return &url.URL{Path: "/"}
	}
	c := *b.u
	return &c
}

// ScrapURL returns the absolute page address of the scrap identified by key.
func (b BaseURL) ScrapURL(key ScrapKey) string {
	return b.String() + "scraps/" + key.FileStem() + ".html"
}
