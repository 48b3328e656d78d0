// Package csrf implements the double-submit-cookie CSRF defense used by the
// site's forms. A token is minted into the form's hidden field on submit and
// mirrored into a cookie named "{name}_{value}" whose value is the token name;
// a stateless server verifies the pair without any session storage.
//
// The protocol is the in-page half of the defense. It is modeled as an
// explicit state object keyed by form identity, so the generate → header
// injection → removal lifecycle is testable without a browser DOM.
package csrf

import (
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"time"
)

var (
	// nameCheck bounds a token name / Borne un nom de token
	nameCheck = regexp.MustCompile(`^[-_a-zA-Z0-9]{4,22}$`)
	// tokenCheck bounds a generated token value / Borne une valeur de token générée
	tokenCheck = regexp.MustCompile(`^[-_/+a-zA-Z0-9]{24,}$`)
)

// tokenBytes is the raw entropy of a token value; 18 bytes encode to exactly
// 24 base64 characters, the minimum the value pattern accepts.
const tokenBytes = 18

// Form is the minimal surface of a document form the protocol needs.
// TokenField reports the current value of the form's CSRF input and false
// when the form carries no such input.
type Form interface {
	ID() string
	TokenField() (string, bool)
	SetTokenField(value string)
}

// Cookie is the protocol's view of a cookie write. MaxAge < 0 deletes.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	SameSite string
	Secure   bool
	MaxAge   int
}

// Jar receives cookie writes. In production this is the HTTP response (or the
// document cookie string); tests use MemoryJar.
type Jar interface {
	Set(c Cookie)
}

// binding records the name↔cookie association for one form / Enregistre l'association nom↔cookie d'un formulaire
type binding struct {
	name     string
	issuedAt time.Time
}

// Protocol holds per-form token state and the injected collaborators.
// It is single-threaded by design: every operation runs synchronously inside
// the submit event that triggers it.
type Protocol struct {
	random       io.Reader
	jar          Jar
	now          func() time.Time
	secureOrigin bool
	bindings     map[string]*binding
	onChange     func(form Form, value string)
}

// NewProtocol creates a protocol instance. The random source must be
// cryptographically secure; secureOrigin selects the HTTPS cookie variant
// (__Host- prefix plus the Secure attribute).
func NewProtocol(random io.Reader, jar Jar, secureOrigin bool) *Protocol {
	return &Protocol{
		random:       random,
		jar:          jar,
		now:          time.Now,
		secureOrigin: secureOrigin,
		bindings:     make(map[string]*binding),
	}
}

// OnChange registers a listener fired whenever the token field value is
// touched, before the submission proceeds / Déclenché avant que la soumission continue
func (p *Protocol) OnChange(fn func(form Form, value string)) {
	p.onChange = fn
}

// GenerateToken runs on every submit, before the browser dispatches the
// native submission. On the first submit of a form whose field value matches
// the name pattern, the value is recorded as the token name and replaced by a
// fresh random token; on every submit with a recorded name and a
// pattern-matching value, the double-submit cookie is (re)written.
//
// Forms without a CSRF field are ignored.
func (p *Protocol) GenerateToken(form Form) error {
	value, ok := form.TokenField()
	if !ok {
		return nil
	}

	bound := p.bindings[form.ID()]
	if bound == nil && nameCheck.MatchString(value) {
		bound = &binding{name: value, issuedAt: p.now()}
		p.bindings[form.ID()] = bound

		token, err := p.newToken()
		if err != nil {
			return err
		}
		value = token
		form.SetTokenField(token)
	}

	// Listeners bound to the field must observe the value before submission.
	if p.onChange != nil {
		p.onChange(form, value)
	}

	if bound != nil && tokenCheck.MatchString(value) {
		p.jar.Set(p.cookie(bound.name+"_"+value, bound.name, 0))
	}

	return nil
}

// GenerateHeaders returns the header set to attach when the submission is
// transported by an in-page fetch instead of a native form post. The mapping
// is {name: value}; it is empty unless both halves pass their patterns.
func (p *Protocol) GenerateHeaders(form Form) map[string]string {
	headers := make(map[string]string)

	value, ok := form.TokenField()
	if !ok {
		return headers
	}

	bound := p.bindings[form.ID()]
	if bound != nil && tokenCheck.MatchString(value) && nameCheck.MatchString(bound.name) {
		headers[bound.name] = value
	}

	return headers
}

// RemoveToken deletes the double-submit cookie once the intercepted
// submission has completed, success or failure. The name binding survives so
// a later submit of the same form keeps its token name.
func (p *Protocol) RemoveToken(form Form) {
	value, ok := form.TokenField()
	if !ok {
		return
	}

	bound := p.bindings[form.ID()]
	if bound != nil && tokenCheck.MatchString(value) && nameCheck.MatchString(bound.name) {
		p.jar.Set(p.cookie(bound.name+"_"+value, "", -1))
	}
}

// newToken draws tokenBytes random bytes and base64-encodes them (standard
// alphabet, so the result matches the value pattern) / Alphabet standard, conforme au motif de valeur
func (p *Protocol) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(p.random, buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// cookie builds the double-submit cookie. Over HTTPS the strictest
// same-origin prefix applies and the cookie is marked secure.
func (p *Protocol) cookie(name, value string, maxAge int) Cookie {
	c := Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   maxAge,
	}
	if p.secureOrigin {
		c.Name = "__Host-" + c.Name
		c.Secure = true
	}
	return c
}
