package util

import (
	"net/url"
	"regexp"
	"strings"
)

var kvPasswordRe = regexp.MustCompile(`(?i)(password=)([^\s]+)`)

// MaskDSN oculta la contraseña de un DSN (URL o key=value) para poder loguearlo.
func MaskDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return ""
	}
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil && u.User != nil {
			if _, has := u.User.Password(); has {
				u.User = url.UserPassword(u.User.Username(), "***")
			}
			// url.String escapa los asteriscos
			return strings.Replace(u.String(), "%2A%2A%2A", "***", 1)
		}
		return dsn
	}
	return kvPasswordRe.ReplaceAllString(dsn, "${1}***")
}
