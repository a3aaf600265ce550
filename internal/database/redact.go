package database

import (
	"net/url"
	"strings"
)

var secretParams = []string{"password", "pass", "pwd"}

// RedactURL masks the password of a connection url, both in the userinfo
// and in password query parameters. Values that do not parse as a url are
// returned unchanged.
func RedactURL(raw string) string {
	stripped := StripJDBC(raw)
	prefix := raw[:len(raw)-len(stripped)]

	u, err := url.Parse(stripped)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return raw
	}

	if q := u.Query(); len(q) > 0 {
		changed := false
		for key := range q {
			for _, secret := range secretParams {
				if strings.EqualFold(key, secret) {
					q.Set(key, "xxxxx")
					changed = true
				}
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return prefix + u.Redacted()
}
