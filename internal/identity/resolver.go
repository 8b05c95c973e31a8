// Package identity maps the raw player identifiers seen on log lines to
// one canonical identity per physical player.
//
// The same player shows up in at least three forms: the full platform id
// ("[U:1:N]"), the bare numeric suffix ("N", used by round-end payloads),
// and a free-text nickname. The resolver keeps an alias table populated
// from every sighted (platform id, nickname) pair during ingestion; the
// fuzzy nickname-prefix match survives only as a last-resort, logged path.
package identity

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rankpipe/rankpipe/internal/model"
)

var platformIDPattern = regexp.MustCompile(`^\[U:1:(\d+)\]$`)

const nickPrefixLen = 3

type knownPlayer struct {
	canonical string
	nickname  string
}

// Resolver is scoped to one ingestion job and must be passed explicitly;
// there is no cross-job cache. Not safe for concurrent use.
type Resolver struct {
	aliases map[string]string // alias form -> canonical id
	known   []knownPlayer     // insertion order, for deterministic fallback
	seen    map[string]bool   // canonical ids already registered
	memo    map[string]string
	log     logrus.FieldLogger

	fallbackHits int
}

func NewResolver(log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		aliases: make(map[string]string),
		seen:    make(map[string]bool),
		memo:    make(map[string]string),
		log:     log,
	}
}

// Observe registers a player reference sighted on a log line. The full
// platform form becomes the canonical id; the numeric suffix and the
// nickname are recorded as aliases.
func (r *Resolver) Observe(ref model.PlayerRef) {
	canonical := ref.RawID()
	if canonical == "" {
		return
	}
	if !r.seen[canonical] {
		r.seen[canonical] = true
		r.known = append(r.known, knownPlayer{canonical: canonical, nickname: ref.Name})
	}
	r.aliases[canonical] = canonical
	if m := platformIDPattern.FindStringSubmatch(ref.PlatformID); m != nil {
		r.aliases[m[1]] = canonical
	}
	if ref.Name != "" {
		if _, taken := r.aliases[ref.Name]; !taken {
			r.aliases[ref.Name] = canonical
		}
	}
}

// Resolve maps a raw identifier to a canonical id. The second return is
// false when no known player matched; the raw id is then returned as a
// best-effort label rather than dropped. Results are memoized for the
// lifetime of the resolver, so resolution is deterministic within a job.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if canonical, ok := r.memo[raw]; ok {
		return canonical, r.seen[canonical]
	}

	canonical, resolved := r.lookup(raw)
	r.memo[raw] = canonical
	return canonical, resolved
}

// FallbackHits reports how many resolutions went through the low-confidence
// nickname-prefix path.
func (r *Resolver) FallbackHits() int { return r.fallbackHits }

func (r *Resolver) lookup(raw string) (string, bool) {
	// 1. Exact alias-table match.
	if canonical, ok := r.aliases[raw]; ok {
		return canonical, true
	}

	// 2. Numeric suffix: a full "[U:1:N]" raw id against known bare
	// numbers, or vice versa.
	if m := platformIDPattern.FindStringSubmatch(raw); m != nil {
		if canonical, ok := r.aliases[m[1]]; ok {
			return canonical, true
		}
	}
	if isNumeric(raw) {
		for _, kp := range r.known {
			if m := platformIDPattern.FindStringSubmatch(kp.canonical); m != nil && m[1] == raw {
				return kp.canonical, true
			}
		}
	}

	// 3. Last resort: nickname prefix. Low confidence, always logged.
	token := strings.ToLower(raw)
	for _, kp := range r.known {
		nick := strings.ToLower(kp.nickname)
		if len(nick) < nickPrefixLen || len(token) < nickPrefixLen {
			continue
		}
		if nick[:nickPrefixLen] == token[:nickPrefixLen] {
			r.fallbackHits++
			r.log.WithFields(logrus.Fields{
				"raw":       raw,
				"canonical": kp.canonical,
				"nickname":  kp.nickname,
			}).Warn("low-confidence nickname-prefix identity match")
			return kp.canonical, true
		}
	}

	return raw, false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
