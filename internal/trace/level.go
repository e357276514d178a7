package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level includes the scopes of the
// levels below it.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // records nothing; reserved for error-only events
	LevelPhase               // driver and pass spans
	LevelDetail              // adds per-function spans
	LevelDebug               // adds per-node events
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest is the finest scope each level records; zero records nothing.
var finest = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFunction,
	LevelDebug:  ScopeNode,
}

// String returns the name ParseLevel accepts, or "unknown".
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name, in any case, to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(s)
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope <= finest[l]
}
