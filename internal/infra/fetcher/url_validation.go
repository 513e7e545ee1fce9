// Package fetcher scrapes full article bodies from the pages feed items
// link to.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"

	"feedsift/internal/usecase/fetch"
)

// checkTarget vets a page URL before it is requested, and again for every
// redirect hop. With denyPrivate set, the host is resolved and the request
// is refused if any address is internal.
func checkTarget(ctx context.Context, raw string, denyPrivate bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q", fetch.ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: no host in %q", fetch.ErrInvalidURL, raw)
	}
	if !denyPrivate {
		return nil
	}

	addrs, err := resolve(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", fetch.ErrInvalidURL, host, err)
	}
	for _, a := range addrs {
		if isInternal(a) {
			return fmt.Errorf("%w: %s is %s", fetch.ErrPrivateIP, host, a)
		}
	}
	return nil
}

func resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if a, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{a}, nil
	}
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

// isInternal reports loopback, RFC 1918 / ULA, link-local and unspecified
// addresses. IPv4-mapped IPv6 addresses are judged by their IPv4 form.
func isInternal(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsLoopback() || a.IsPrivate() || a.IsLinkLocalUnicast() || a.IsUnspecified()
}
