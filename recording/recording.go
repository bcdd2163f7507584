package recording

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for recording identity parsing
var (
	ErrMalformedStem = errors.New("recording stem must be '<version>_<act>'")
)

// ID identifies one recording of the cycle: a performance version and an act.
// All on-disk artifacts for a recording share the "<version>_<act>" stem.
type ID struct {
	Version string
	Act     string
}

func (id ID) String() string {
	return id.Version + "_" + id.Act
}

// Parse builds an ID from an artifact file stem such as "Ka_A".
func Parse(stem string) (ID, error) {
	parts := strings.SplitN(stem, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ID{}, fmt.Errorf("%w: got %q", ErrMalformedStem, stem)
	}

	return ID{Version: parts[0], Act: parts[1]}, nil
}
