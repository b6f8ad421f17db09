// Package updater checks whether a newer code-checkout release is published.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/httpclient"
)

// LatestReleaseURL is the GitHub API endpoint for the newest published release.
const LatestReleaseURL = "https://api.github.com/repos/riff-tech/code-checkout-cli/releases/latest"

const checkTimeout = 5 * time.Second

// ErrNoUpdateAvailable is returned when the running build is current.
var ErrNoUpdateAvailable = errors.New("no update available")

// Release is the subset of a GitHub release the checker reads.
type Release struct {
	TagName    string `json:"tag_name"`
	Body       string `json:"body"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
}

// UpdateInfo describes a release newer than the running build.
type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseNotes   string
	ReleaseURL     string
}

// Checker compares the running version with the latest release.
type Checker struct {
	version     string
	client      *http.Client
	releasesURL string
}

// New returns a Checker that reaches GitHub through the configured proxy.
func New(version string, proxy *config.ProxyConfig) (*Checker, error) {
	client, err := httpclient.New(httpclient.Options{Timeout: checkTimeout, Proxy: proxy})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return NewWithClient(version, client, LatestReleaseURL), nil
}

// NewWithClient returns a Checker that queries releasesURL with client.
func NewWithClient(version string, client *http.Client, releasesURL string) *Checker {
	return &Checker{version: version, client: client, releasesURL: releasesURL}
}

// CheckForUpdate returns the latest release when it is newer than the
// running version, or ErrNoUpdateAvailable.
func (c *Checker) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	release, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	if release.Prerelease {
		return nil, ErrNoUpdateAvailable
	}

	newer, err := isNewerVersion(release.TagName, c.version)
	if err != nil {
		return nil, err
	}
	if !newer {
		return nil, ErrNoUpdateAvailable
	}

	return &UpdateInfo{
		CurrentVersion: c.version,
		LatestVersion:  release.TagName,
		ReleaseNotes:   release.Body,
		ReleaseURL:     release.HTMLURL,
	}, nil
}

func (c *Checker) fetchLatestRelease(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "code-checkout-cli/"+c.version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoUpdateAvailable
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("release lookup returned HTTP %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &release, nil
}

// isNewerVersion reports whether latest is a higher semver than current.
// Development builds are older than every release.
func isNewerVersion(latest, current string) (bool, error) {
	latestVersion, err := semver.NewVersion(strings.TrimSpace(latest))
	if err != nil {
		return false, fmt.Errorf("parse release version %q: %w", latest, err)
	}

	current = strings.TrimSpace(current)
	if current == "" || current == "dev" {
		return true, nil
	}
	currentVersion, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", current, err)
	}

	return latestVersion.GreaterThan(currentVersion), nil
}
