package postman

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var pathParamPattern = regexp.MustCompile(`\{([A-Za-z0-9_-]+)\}`)

// PathParams returns the names of the {name} parameters in path, in order of
// first appearance and without duplicates.
func PathParams(path string) []string {
	matches := pathParamPattern.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// RewritePath turns {name} parameters into :name. Anything outside the
// parameter pattern is left untouched.
func RewritePath(path string) string {
	return pathParamPattern.ReplaceAllString(path, ":$1")
}

// CombineURL joins base and path with exactly one slash. A non-empty path gets
// a trailing slash; query is appended after it when present.
func CombineURL(base, path, query string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	u := base + "/" + path
	if query != "" {
		u += "?" + query
	}
	return u
}

// HasRequestBody reports whether verb conventionally carries a request body.
func HasRequestBody(verb string) bool {
	switch strings.ToUpper(verb) {
	case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// queryString encodes data as key=value pairs in data order.
func queryString(data []Data) string {
	parts := make([]string, 0, len(data))
	for _, d := range data {
		parts = append(parts, url.QueryEscape(d.Key)+"="+url.QueryEscape(d.Value))
	}
	return strings.Join(parts, "&")
}
