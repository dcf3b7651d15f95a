package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPage is returned for a page file that parses but cannot be used.
var ErrInvalidPage = errors.New("config: invalid page file")

// Page is the copy shown on the countdown panel and the day of the month the
// launch recurs on.
type Page struct {
	Badge     string `yaml:"badge"`
	Title     string `yaml:"title"`
	Tagline   string `yaml:"tagline"`
	InviteURL string `yaml:"invite_url"`
	LaunchDay int    `yaml:"launch_day"`
}

// DefaultPage returns the built-in page.
func DefaultPage() Page {
	return Page{
		Badge:     DefaultBadge,
		Title:     DefaultTitle,
		Tagline:   DefaultTagline,
		InviteURL: DefaultInviteURL,
		LaunchDay: LaunchDay,
	}
}

// LoadPage reads a YAML page file over the defaults. Fields missing from the
// file keep their default; an empty path returns the defaults.
func LoadPage(path string) (Page, error) {
	page := DefaultPage()
	if path == "" {
		return page, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return page, fmt.Errorf("read page file: %w", err)
	}
	if err := yaml.Unmarshal(data, &page); err != nil {
		return page, fmt.Errorf("parse page file %s: %w", path, err)
	}
	if page.LaunchDay < 1 || page.LaunchDay > 28 {
		return page, fmt.Errorf("%w: launch_day %d is not in 1..28", ErrInvalidPage, page.LaunchDay)
	}
	return page, nil
}

// PageFromEnv loads the page named by LAUNCH_CONFIG. INVITE_URL, when set,
// replaces the file's invite.
func PageFromEnv() (Page, error) {
	page, err := LoadPage(GetEnv("LAUNCH_CONFIG", ""))
	if err != nil {
		return page, err
	}
	page.InviteURL = GetEnv("INVITE_URL", page.InviteURL)
	return page, nil
}
