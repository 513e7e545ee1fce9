package entity

import "net/url"

const maxFeedURLLength = 2048

// checkFeedURL rejects anything but an absolute http(s) URL. Address checks
// (private ranges, DNS) belong to the fetchers, which see the resolved host.
func checkFeedURL(raw string) error {
	switch {
	case raw == "":
		return Invalid("url", "is required")
	case len(raw) > maxFeedURLLength:
		return Invalid("url", "longer than %d bytes", maxFeedURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Invalid("url", "%v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Invalid("url", "scheme %q is not http or https", u.Scheme)
	}
	if u.Host == "" {
		return Invalid("url", "has no host")
	}
	return nil
}
