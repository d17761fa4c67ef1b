package diagnose

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidBaseURL reports a base URL whose host cannot be determined.
// It is raised before any network I/O happens.
var ErrInvalidBaseURL = errors.New("base URL is invalid: cannot determine host")

// DefaultTimeout applies when a Target carries no per-call timeout.
const DefaultTimeout = 60 * time.Second

// Target is the immutable input of one probing run.
type Target struct {
	BaseURL string
	APIKey  string
	OrgID   string
	Model   string
	Timeout time.Duration
}

// normalized returns a copy with whitespace and trailing slashes trimmed from
// the base URL and the default timeout filled in.
func (t Target) normalized() Target {
	t.BaseURL = strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")
	if t.Timeout <= 0 {
		t.Timeout = DefaultTimeout
	}
	return t
}

// hostOf extracts the hostname of a base URL, rejecting anything that does not
// parse as an absolute http(s) URL with a host.
func hostOf(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", ErrInvalidBaseURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", ErrInvalidBaseURL
	}
	return u.Hostname(), nil
}

// ExtractHost pulls the hostname out of a base URL for display purposes. Bare
// hosts without a scheme are returned as-is, mirroring how users paste relay
// addresses.
func ExtractHost(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	if strings.HasPrefix(baseURL, "http://") || strings.HasPrefix(baseURL, "https://") {
		u, err := url.Parse(baseURL)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	return baseURL
}

// IsIPLiteral reports whether host parses as a bare IP address.
func IsIPLiteral(host string) bool {
	return net.ParseIP(host) != nil
}
