package stage

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind enumerates the fixed pipeline stages in execution order.
type Kind int

const (
	Fetch Kind = iota
	Extract
	Project
)

var kindNames = [...]string{"fetch", "extract", "project"}

// All returns every stage in execution order.
func All() []Kind {
	return []Kind{Fetch, Extract, Project}
}

// Valid reports whether k is one of the declared stages.
func (k Kind) Valid() bool {
	return k >= Fetch && k <= Project
}

// String returns the lowercase stage name used in logs, flags, and the journal.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("stage(%d)", int(k))
	}
	return kindNames[k]
}

// Label returns the display name ("Fetch", "Extract", "Project").
func (k Kind) Label() string {
	return cases.Title(language.English).String(k.String())
}

// Predecessor returns the stage whose artifact k consumes. Fetch has none.
func (k Kind) Predecessor() (Kind, bool) {
	if k <= Fetch || !k.Valid() {
		return 0, false
	}
	return k - 1, true
}

// ParseKind maps a stage name onto its Kind. Matching ignores case and
// surrounding whitespace.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range kindNames {
		if candidate == normalized {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q (want one of %s)", name, strings.Join(kindNames[:], ", "))
}

// MarshalText renders the stage name for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
