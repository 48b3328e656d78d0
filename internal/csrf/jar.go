package csrf

// MemoryJar is an in-memory cookie store. The invariant under test is that a
// cookie exists exactly between GenerateToken and RemoveToken.
type MemoryJar struct {
	cookies map[string]Cookie
}

// NewMemoryJar creates an empty jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{cookies: make(map[string]Cookie)}
}

// Set stores the cookie; a negative MaxAge deletes it, as a browser would.
func (j *MemoryJar) Set(c Cookie) {
	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = c
}

// Get returns the stored cookie and whether it exists.
func (j *MemoryJar) Get(name string) (Cookie, bool) {
	c, ok := j.cookies[name]
	return c, ok
}

// Len returns the number of live cookies.
func (j *MemoryJar) Len() int {
	return len(j.cookies)
}

// Names returns the names of all live cookies.
func (j *MemoryJar) Names() []string {
	names := make([]string, 0, len(j.cookies))
	for name := range j.cookies {
		names = append(names, name)
	}
	return names
}
