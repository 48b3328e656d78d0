package web

import (
	"net/http"
	"regexp"
	"strings"
)

// csrfFieldName is the form input carrying the CSRF token. The field is
// rendered with the form's token name as its initial value; the in-page
// protocol swaps in a fresh token and mirrors it into a cookie before the
// browser dispatches the submission.
const csrfFieldName = "_csrf"

var (
	csrfNameCheck  = regexp.MustCompile(`^[-_a-zA-Z0-9]{4,22}$`)
	csrfTokenCheck = regexp.MustCompile(`^[-_/+a-zA-Z0-9]{24,}$`)
)

// rawCookie is one name=value pair lifted from the Cookie header.
type rawCookie struct {
	name  string
	value string
}

// rawCookies splits the Cookie header ourselves. Token values use the full
// base64 alphabet, so a double-submit cookie name may contain "/" or "+";
// those are not RFC 6265 token characters and r.Cookies() silently drops
// such cookies, which would reject legitimate submissions.
func rawCookies(r *http.Request) []rawCookie {
	var cookies []rawCookie
	for _, line := range r.Header.Values("Cookie") {
		for _, part := range strings.Split(line, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, value, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			cookies = append(cookies, rawCookie{name: name, value: strings.Trim(value, `"`)})
		}
	}
	return cookies
}

// verifyCSRF checks the double-submit pair on a state-changing request.
//
// The submitted token must match a cookie named "{name}_{token}" whose value
// is the token name, with an optional "__Host-" prefix on HTTPS origins. The
// token may arrive either in the form field or, for fetch-based submissions,
// in a header named after the token name. No server-side token state exists;
// the pairing alone proves the request originated from a page we served.
func verifyCSRF(r *http.Request) bool {
	token := r.PostFormValue(csrfFieldName)

	for _, cookie := range rawCookies(r) {
		name := cookie.value
		if !csrfNameCheck.MatchString(name) {
			continue
		}

		cookieName := strings.TrimPrefix(cookie.name, "__Host-")

		if token != "" && csrfTokenCheck.MatchString(token) && cookieName == name+"_"+token {
			return true
		}

		// Fetch submissions carry the token in a header keyed by the name.
		if header := r.Header.Get(name); header != "" &&
			csrfTokenCheck.MatchString(header) && cookieName == name+"_"+header {
			return true
		}
	}

	return false
}
