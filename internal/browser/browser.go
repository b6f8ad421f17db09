// Package browser opens URLs in the user's default web browser.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
)

// Opener opens a URL for the user.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// openURL launches the platform URL handler. It honours $BROWSER and WSL.
var openURL = pkgbrowser.OpenURL

func init() {
	// Discard launcher output.
	pkgbrowser.Stdout = io.Discard
}

// System opens URLs with the operating system's URL handler.
type System struct{}

// Open launches the platform URL handler for rawURL. Only http and https
// URLs are accepted.
func (System) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := openURL(u.String()); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
