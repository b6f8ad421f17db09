// Package httpclient builds the HTTP client used to reach the licensing API.
// Requests may be routed through an HTTP(S) proxy or a SOCKS5 proxy.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"

	"github.com/riff-tech/code-checkout-cli/internal/config"
)

// Options configures New.
type Options struct {
	// Timeout bounds each request. Zero selects config.DefaultTimeout.
	Timeout time.Duration
	Proxy   *config.ProxyConfig
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// New returns an http.Client for API calls. Without proxy settings the
// standard proxy environment variables still apply.
func New(opts Options) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	transport, err := newTransport(timeout, opts.Proxy)
	if err != nil {
		return nil, err
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// NewFromSettings returns the client described by the resolved CLI settings.
func NewFromSettings(s config.Settings) (*http.Client, error) {
	p := s.Proxy
	return New(Options{Timeout: s.Timeout, Proxy: &p})
}

func newTransport(timeout time.Duration, cfg *config.ProxyConfig) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	switch {
	case !cfg.HasProxy():
	case cfg.SOCKS5Proxy != "":
		dial, err := socks5Dialer(cfg.SOCKS5Proxy, dialer)
		if err != nil {
			return nil, fmt.Errorf("configure proxy: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = dial
	default:
		transport.Proxy = proxySelector(cfg)
	}
	return transport, nil
}

// proxySelector picks the proxy for each request. HTTPS traffic falls back
// to the HTTP proxy when no HTTPS proxy is set.
func proxySelector(cfg *config.ProxyConfig) func(*http.Request) (*url.URL, error) {
	httpsProxy := cfg.HTTPSProxy
	if httpsProxy == "" {
		httpsProxy = cfg.HTTPProxy
	}
	pick := (&httpproxy.Config{
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    cfg.NoProxy,
	}).ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return pick(req.URL)
	}
}

func socks5Dialer(rawURL string, forward *net.Dialer) (dialFunc, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse SOCKS5 proxy URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("SOCKS5 proxy URL %q has no host", redact(rawURL))
	}
	if u.Scheme == "" || u.Scheme == "socks" {
		u.Scheme = "socks5"
	}

	d, err := proxy.FromURL(u, forward)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// ProxyInfo describes the configured proxies for display, with passwords
// redacted.
func ProxyInfo(cfg *config.ProxyConfig) string {
	if !cfg.HasProxy() {
		return "none"
	}

	var parts []string
	for _, p := range []struct{ label, value string }{
		{"SOCKS5", cfg.SOCKS5Proxy},
		{"HTTP", cfg.HTTPProxy},
		{"HTTPS", cfg.HTTPSProxy},
	} {
		if p.value != "" {
			parts = append(parts, p.label+": "+redact(p.value))
		}
	}
	if cfg.NoProxy != "" {
		parts = append(parts, "NoProxy: "+cfg.NoProxy)
	}
	return strings.Join(parts, ", ")
}

func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	if _, ok := u.User.Password(); !ok {
		return rawURL
	}
	return u.Redacted()
}
