package pipeline

import (
	"net/url"
	"strings"
)

// ResolveProfile turns a request identifier into a LinkedIn profile URL and
// a bare username. The identifier is either a handle or an absolute URL;
// absolute URLs must point at a LinkedIn host.
func ResolveProfile(baseURL, input string) (profileURL, username string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", ErrMissingIdentifier
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, perr := url.Parse(input)
		if perr != nil {
			return "", "", ErrInvalidProfileURL
		}
		host := strings.ToLower(u.Hostname())
		if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
			return "", "", ErrInvalidProfileURL
		}
		return input, usernameFromPath(u.Path), nil
	}

	handle := strings.Trim(input, "/")
	return strings.TrimRight(baseURL, "/") + "/in/" + url.PathEscape(handle) + "/", handle, nil
}

// usernameFromPath pulls the handle out of an /in/<handle>/ path. When the
// path has no /in/ segment the whole trimmed path serves as the identifier.
func usernameFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if p == "in" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	if trimmed == "" {
		return "profile"
	}
	return strings.ReplaceAll(trimmed, "/", "_")
}
