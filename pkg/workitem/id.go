package workitem

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errEmptyID     = errors.New("empty work item id")
	errMalformedID = errors.New("malformed work item id")
)

// ID is the structured canonical identifier of a work item.
//
// It serializes to "<provider>:<scope>#<kind>:<nativeID>", where the
// kind segment names a native sub-type (e.g. GitLab distinguishes
// "issue" from "epic") and is omitted entirely when the provider has a
// single resource class. The same native object always yields the same
// ID, and parsing the string form recovers every component.
type ID struct {
	Provider string // provider name, e.g. "github"
	Scope    string // owner/repo, project path, or org/project
	Kind     string // native sub-type tag, may be empty
	NativeID string // platform-native identifier
}

// String renders the canonical string form of the ID.
func (id ID) String() string {
	if id.Kind == "" {
		return fmt.Sprintf("%s:%s#%s", id.Provider, id.Scope, id.NativeID)
	}
	return fmt.Sprintf("%s:%s#%s:%s", id.Provider, id.Scope, id.Kind, id.NativeID)
}

// IsZero reports whether the ID has no components set.
func (id ID) IsZero() bool {
	return id == ID{}
}

// ParseID parses the canonical string form back into its components.
//
// Parsing is strict: a missing provider, scope, or native identifier is
// an error, never a silent default. Whether a kind tag is required is
// the calling adapter's decision, so ParseID accepts both forms.
func ParseID(s string) (ID, error) {
	if s == "" {
		return ID{}, errEmptyID
	}

	providerRest := strings.SplitN(s, ":", 2)
	if len(providerRest) != 2 || providerRest[0] == "" {
		return ID{}, fmt.Errorf("%w: missing provider prefix in %q", errMalformedID, s)
	}
	provider := providerRest[0]

	scopeRest := strings.SplitN(providerRest[1], "#", 2)
	if len(scopeRest) != 2 || scopeRest[0] == "" {
		return ID{}, fmt.Errorf("%w: missing scope separator in %q", errMalformedID, s)
	}
	scope := scopeRest[0]

	kind := ""
	nativeID := scopeRest[1]
	if idx := strings.LastIndex(scopeRest[1], ":"); idx >= 0 {
		kind = scopeRest[1][:idx]
		nativeID = scopeRest[1][idx+1:]
	}
	if nativeID == "" {
		return ID{}, fmt.Errorf("%w: missing native identifier in %q", errMalformedID, s)
	}
	if kind != "" && strings.Contains(kind, ":") {
		return ID{}, fmt.Errorf("%w: invalid sub-type tag %q in %q", errMalformedID, kind, s)
	}

	return ID{Provider: provider, Scope: scope, Kind: kind, NativeID: nativeID}, nil
}
