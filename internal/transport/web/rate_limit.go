package web

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// getIPWithTrustedProxies extracts the client IP with trusted proxy validation.
// If trustedProxies is provided and not empty, it validates that the RemoteAddr
// is in the trusted list before trusting X-Forwarded-For or X-Real-IP headers.
//
// IMPORTANT: X-Forwarded-For format is: "client, proxy1, proxy2"
// We take the FIRST IP (client) as it's the original requester.
func getIPWithTrustedProxies(r *http.Request, trustedProxies []string) string {
	// Extract the immediate connection IP (RemoteAddr)
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If SplitHostPort fails, it might be just an IP without port
		remoteIP = r.RemoteAddr
	}

	// If no trusted proxies configured, only use RemoteAddr (secure default)
	if len(trustedProxies) == 0 {
		return remoteIP
	}

	// Check if the request is from a trusted proxy
	isTrustedProxy := false
	for _, trustedIP := range trustedProxies {
		if remoteIP == trustedIP {
			isTrustedProxy = true
			break
		}
	}

	// If not from a trusted proxy, use RemoteAddr (cannot be spoofed)
	if !isTrustedProxy {
		return remoteIP
	}

	// Request is from a trusted proxy - check proxy headers.
	// X-Forwarded-For carries a comma-separated chain of IPs.
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			// Take the first IP (the original client) and trim whitespace
			clientIP := strings.TrimSpace(ips[0])
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
		}
	}

	// Check for the X-Real-IP header (used by some proxies like nginx)
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		realIP = strings.TrimSpace(realIP)
		if net.ParseIP(realIP) != nil {
			return realIP
		}
	}

	// Fallback to RemoteAddr if headers are invalid
	return remoteIP
}

// hashIP creates a SHA-256 hash of an IP address to avoid storing raw IP
// addresses. This is a privacy-enhancing measure.
func hashIP(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])
}

// clientKey resolves the request to the hashed identifier used for rate
// limiting and submission metadata.
func (mw *Middleware) clientKey(r *http.Request) string {
	return hashIP(getIPWithTrustedProxies(r, mw.conf.Security.TrustedProxies))
}

// RateLimit is a middleware that applies a global rate limit to all incoming
// requests, keyed by the hashed client IP. If the rate limiter is disabled in
// the configuration, the middleware does nothing.
func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Bypass if the rate limiter is disabled.
		if !mw.conf.RateLimiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !mw.globalLimiter.Allow(mw.clientKey(r)) {
			mw.metrics.RecordRateLimitHit()
			sendRateLimitError(w, 60)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sendRateLimitError answers 429 with Retry-After headers and a short plain
// body suitable for both browsers and scripts.
func sendRateLimitError(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintln(w, "Too many requests. Please try again later.")
}
