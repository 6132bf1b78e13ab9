package datastore

import (
	"net/url"
	"sort"
	"strings"
)

// defaultPorts maps a scheme to the port number that is implicit and thus
// stripped during normalization.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// NormalizeURL canonicalizes a URL for use as a dedup identity: lowercases
// scheme and host, strips a default port, drops a trailing slash (except
// for the bare root path), sorts query parameters by key, and preserves
// the fragment. Malformed input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if port := u.Port(); port != "" && defaultPorts[u.Scheme] == port {
		u.Host = u.Hostname()
	}

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		u.RawQuery = sortedQuery(u.RawQuery)
	}

	return u.String()
}

// sortedQuery re-encodes a raw query string with keys (and, for repeated
// keys, values) in sorted order, so equivalent URLs with differently
// ordered parameters normalize identically.
func sortedQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		vals := values[k]
		sorted := append([]string(nil), vals...)
		sort.Strings(sorted)

		for _, v := range sorted {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}

	return sb.String()
}
