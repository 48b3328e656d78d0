package web

// ContextKey is a custom type used for creating context keys.
// Using a custom type for context keys helps prevent collisions between keys
// defined in different packages. It ensures that the keys used by this package
// are unique and will not clash with keys from other standard or third-party libraries.
type ContextKey string

// LocaleContextKey is the key under which the locale middleware stores the
// resolved locale. Handlers read it to pick page templates and mail language.
const LocaleContextKey = ContextKey("locale")
