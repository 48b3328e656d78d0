package ports

// SubmissionLimiter answers whether a client may consume one submission unit.
// Keys are opaque client identifiers (hashed network addresses). Rejections are
// immediate; there is no queueing.
type SubmissionLimiter interface {
	Allow(key string) bool
}
