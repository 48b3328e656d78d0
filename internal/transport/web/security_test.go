package web

import (
	"bytes"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/net-idea/huette9/internal/csrf"
)

func csrfRequest(field string, cookies ...*http.Cookie) *http.Request {
	values := url.Values{}
	if field != "" {
		values.Set(csrfFieldName, field)
	}
	req := httptest.NewRequest("POST", "/booking", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestVerifyCSRF(t *testing.T) {
	token := "AAAAAAAAAAAAAAAAAAAAAAAA"

	t.Run("Matching pair verifies", func(t *testing.T) {
		req := csrfRequest(token, &http.Cookie{Name: "booking-form_" + token, Value: "booking-form"})
		if !verifyCSRF(req) {
			t.Error("Matching field and cookie should verify")
		}
	})

	t.Run("Host prefix verifies", func(t *testing.T) {
		req := csrfRequest(token, &http.Cookie{Name: "__Host-booking-form_" + token, Value: "booking-form"})
		if !verifyCSRF(req) {
			t.Error("__Host- prefixed cookie should verify")
		}
	})

	t.Run("Header variant verifies", func(t *testing.T) {
		req := csrfRequest("", &http.Cookie{Name: "booking-form_" + token, Value: "booking-form"})
		req.Header.Set("booking-form", token)
		if !verifyCSRF(req) {
			t.Error("Token in a name-keyed header should verify")
		}
	})

	t.Run("Missing cookie fails", func(t *testing.T) {
		if verifyCSRF(csrfRequest(token)) {
			t.Error("Field without cookie must not verify")
		}
	})

	t.Run("Missing field fails", func(t *testing.T) {
		req := csrfRequest("", &http.Cookie{Name: "booking-form_" + token, Value: "booking-form"})
		if verifyCSRF(req) {
			t.Error("Cookie without field or header must not verify")
		}
	})

	t.Run("Token mismatch fails", func(t *testing.T) {
		req := csrfRequest("BBBBBBBBBBBBBBBBBBBBBBBB",
			&http.Cookie{Name: "booking-form_" + token, Value: "booking-form"})
		if verifyCSRF(req) {
			t.Error("Field token differing from the cookie pair must not verify")
		}
	})

	t.Run("Cookie value must be the token name", func(t *testing.T) {
		req := csrfRequest(token, &http.Cookie{Name: "booking-form_" + token, Value: "something-else"})
		if verifyCSRF(req) {
			t.Error("Cookie whose value is not the pairing name must not verify")
		}
	})

	t.Run("Short token fails the pattern", func(t *testing.T) {
		short := "AAAA"
		req := csrfRequest(short, &http.Cookie{Name: "booking-form_" + short, Value: "booking-form"})
		if verifyCSRF(req) {
			t.Error("Token below 24 characters must not verify")
		}
	})
}

// The server must accept exactly what the client protocol produces: a pair
// minted by csrf.Protocol verifies, and after RemoveToken the cookie the
// verification depended on is gone.
func TestVerifyCSRF_ClientProtocolRoundTrip(t *testing.T) {
	jar := csrf.NewMemoryJar()
	p := csrf.NewProtocol(rand.Reader, jar, false)

	form := &csrf.FieldForm{FormID: "booking", Value: "booking-form"}
	if err := p.GenerateToken(form); err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}

	names := jar.Names()
	if len(names) != 1 {
		t.Fatalf("Expected 1 cookie from the protocol, got %d", len(names))
	}
	cookie, _ := jar.Get(names[0])

	req := csrfRequest(form.Value, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	if !verifyCSRF(req) {
		t.Error("Pair produced by the client protocol should verify on the server")
	}

	p.RemoveToken(form)
	if jar.Len() != 0 {
		t.Error("RemoveToken should leave no cookie behind")
	}
}

// Standard-alphabet tokens contain "/" or "+" more often than not. The
// resulting cookie name is not an RFC 6265 token, so net/http's cookie
// parser drops it; verification must read the raw header instead.
func TestVerifyCSRF_NonTokenCharCookieName(t *testing.T) {
	jar := csrf.NewMemoryJar()
	p := csrf.NewProtocol(bytes.NewReader(bytes.Repeat([]byte{0xff}, 18)), jar, false)

	form := &csrf.FieldForm{FormID: "booking", Value: "booking-form"}
	if err := p.GenerateToken(form); err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}
	token, _ := form.TokenField()
	if !strings.Contains(token, "/") {
		t.Fatalf("Expected a token carrying slashes, got %q", token)
	}

	names := jar.Names()
	if len(names) != 1 {
		t.Fatalf("Expected 1 cookie from the protocol, got %d", len(names))
	}
	cookie, _ := jar.Get(names[0])

	req := csrfRequest(token, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	if len(req.Cookies()) != 0 {
		t.Fatalf("Expected net/http to drop the cookie, got %d", len(req.Cookies()))
	}
	if !verifyCSRF(req) {
		t.Error("Slash-bearing pair should verify through the raw Cookie header")
	}
}
