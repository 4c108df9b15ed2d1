// Package featureflags evaluates per-user rollout switches configured as a
// comma-separated list, e.g. "follow_notifications=on,like_notifications=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags understood by the core.
const (
	FollowNotifications = "follow_notifications"
	LikeNotifications   = "like_notifications"
)

// Default enables every notification flag.
const Default = FollowNotifications + "=on," + LikeNotifications + "=on"

// rule is a parsed flag value: a rollout percentage from 0 to 100.
type rule struct {
	percent int
	raw     string
}

// Set is an immutable collection of evaluated flag rules.
type Set struct {
	rules map[string]rule
}

// Parse builds a Set from raw. Malformed entries are skipped.
func Parse(raw string) *Set {
	rules := make(map[string]rule)
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" {
			continue
		}
		if pct, ok := parsePercent(value); ok {
			rules[name] = rule{percent: pct, raw: value}
		}
	}
	return &Set{rules: rules}
}

func parsePercent(value string) (int, bool) {
	switch value {
	case "on", "true", "1":
		return 100, true
	case "off", "false", "0":
		return 0, true
	}
	if !strings.HasSuffix(value, "%") {
		return 0, false
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil {
		return 0, false
	}
	return min(max(pct, 0), 100), true
}

// Enabled reports whether name is on for userID. Unknown flags are off and a
// nil Set has every flag on. Partial rollouts never include user 0.
func (s *Set) Enabled(name string, userID uint) bool {
	if s == nil {
		return true
	}
	r, ok := s.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Snapshot returns every configured flag evaluated for userID.
func (s *Set) Snapshot(userID uint) map[string]bool {
	if s == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(s.rules))
	for name := range s.rules {
		out[name] = s.Enabled(name, userID)
	}
	return out
}

// String renders the configured values in their normalized form.
func (s *Set) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.rules))
	for name, r := range s.rules {
		parts = append(parts, name+"="+r.raw)
	}
	return strings.Join(parts, ",")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
