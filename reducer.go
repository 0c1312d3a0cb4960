package rdfsummary

import (
	"strings"

	"github.com/golang/groupcache/lru"
)

// FallbackPrefix marks tokens for URIs that matched no known namespace.
const FallbackPrefix = "___"

// namespaceDelimiters are the characters a namespace prefix may end with.
const namespaceDelimiters = "_/=:#"

// reducerConfig holds configuration options for a Reducer.
type reducerConfig struct {
	cacheSize int
}

// ReducerOption is a function that configures a Reducer.
type ReducerOption func(*reducerConfig)

// WithReducerCacheSize bounds the memo of reduced tokens. Zero disables it.
func WithReducerCacheSize(n int) ReducerOption {
	return func(c *reducerConfig) {
		c.cacheSize = n
	}
}

// Reducer turns URIs and blank node labels into short display tokens.
// A Reducer is not safe for concurrent use; give each goroutine its own.
type Reducer struct {
	curies *CurieMap
	cache  *lru.Cache
}

// NewReducer creates a Reducer over curies. The CurieMap must not change
// while the Reducer is in use, since cached tokens are never invalidated.
func NewReducer(curies *CurieMap, opts ...ReducerOption) *Reducer {
	cfg := &reducerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	r := &Reducer{curies: curies}
	if cfg.cacheSize > 0 {
		r.cache = lru.New(cfg.cacheSize)
	}
	return r
}

// Reduce returns the display token for token. Callers strip the angle
// brackets of IRIs before calling.
//
// Resolution order: blank nodes, then the longest delimiter-terminated
// prefix of token (token itself included) that is a curie key, then the
// exception table, then the escaped fallback.
func (r *Reducer) Reduce(token string) string {
	if strings.HasPrefix(token, "_:") {
		return BlankNode
	}
	if r.cache != nil {
		if v, ok := r.cache.Get(token); ok {
			return v.(string)
		}
	}
	reduced := r.reduce(token)
	if r.cache != nil {
		r.cache.Add(token, reduced)
	}
	return reduced
}

func (r *Reducer) reduce(token string) string {
	if short, ok := r.curies.Lookup(token); ok {
		return short
	}
	if short, ok := r.longestKnownNamespace(token); ok {
		return short
	}
	if _, short, ok := r.curies.ExceptionLookup(token); ok {
		return short
	}
	return Fallback(token)
}

// longestKnownNamespace walks the truncations of token that end just after a
// delimiter, longest first, and returns the first one that is a curie key.
// Every candidate has a distinct length, so the result is unambiguous.
func (r *Reducer) longestKnownNamespace(token string) (string, bool) {
	// A truncation must drop at least one character.
	for end := len(token) - 1; end > 0; end-- {
		if !strings.ContainsRune(namespaceDelimiters, rune(token[end-1])) {
			continue
		}
		if short, ok := r.curies.Lookup(token[:end]); ok {
			return short, true
		}
	}
	return "", false
}

// Fallback builds the last-resort token for a URI with no known namespace:
// the scheme is dropped and the rest escaped with SafeIdentifier.
func Fallback(token string) string {
	if i := strings.Index(token, "://"); i > 0 && isScheme(token[:i]) {
		token = token[i+3:]
	}
	return FallbackPrefix + SafeIdentifier(token)
}

func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

// SafeIdentifier collapses every run of characters outside [A-Za-z0-9_]
// (and every run of underscores) into a single underscore and trims
// leading and trailing underscores.
func SafeIdentifier(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pendingUnderscore := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isWordByte(c) && c != '_' {
			if pendingUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingUnderscore = false
			sb.WriteByte(c)
			continue
		}
		pendingUnderscore = true
	}
	return sb.String()
}

// IsSafeIdentifier reports whether s is non-empty and only holds [A-Za-z0-9_].
func IsSafeIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// LocalName returns the final path or fragment segment of a predicate URI:
// the text after the last '/', then after the last '#' within it.
func LocalName(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		uri = uri[i+1:]
	}
	if i := strings.LastIndexByte(uri, '#'); i >= 0 {
		uri = uri[i+1:]
	}
	return uri
}
