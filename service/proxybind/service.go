package proxybind

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// defaultProbeURL returns the caller's public IP as plain text.
const defaultProbeURL = "https://api.ipify.org"

func NewService() *service {
	return &service{probeURL: defaultProbeURL}
}

// Client implements proxybind.ProxyService.
func (s *service) Client(socks5URL string) (*http.Client, error) {
	if socks5URL == "" {
		return &http.Client{}, nil
	}

	dialer, err := socksDialer(socks5URL)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	}
	return &http.Client{Transport: transport}, nil
}

// SelfTest implements proxybind.ProxyService.
func (s *service) SelfTest(ctx context.Context, socks5URL string) (string, error) {
	client, err := s.Client(socks5URL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.probeURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy connectivity test failed: probe returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("failed to read probe response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// socksDialer parses a socks5:// URL, with optional userinfo, into a
// context-aware dialer.
func socksDialer(socks5URL string) (proxy.ContextDialer, error) {
	u, err := url.Parse(socks5URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy URL: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme %q, want socks5", u.Scheme)
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "1080")
	}

	dialer, err := proxy.SOCKS5("tcp", host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to build SOCKS5 dialer: %w", err)
	}

	ctxDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer does not support context dialing")
	}
	return ctxDialer, nil
}
