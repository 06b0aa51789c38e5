package proxybind

import (
	"context"
	"net/http"
)

type service struct {
	probeURL string
}

// ProxyService builds SOCKS5-tunneled HTTP clients and probes proxy
// connectivity. An empty proxy URL always means direct connectivity.
type ProxyService interface {
	// Client returns an *http.Client whose every connection is dialed
	// through the given SOCKS5 proxy. The client is shared by the
	// token exchange and all resource API calls of a ClientSet.
	Client(socks5URL string) (*http.Client, error)

	// SelfTest dials out through the given proxy URL and reports the
	// externally observed source IP. It is not tied to any stored
	// account; the panel uses it to validate a proxy before saving.
	SelfTest(ctx context.Context, socks5URL string) (string, error)
}
