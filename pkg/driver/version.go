package driver

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CoreVersion is the version requires constraints are checked against.
const CoreVersion = "0.3.0"

// ErrIncompatibleCore is returned when a requires constraint excludes
// CoreVersion.
var ErrIncompatibleCore = errors.New("incompatible core version")

var coreVersion = semver.MustParse(CoreVersion)

// CheckRequires validates constraint and reports whether CoreVersion
// satisfies it. An empty constraint accepts every version.
func CheckRequires(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", constraint, err)
	}
	if !c.Check(coreVersion) {
		return fmt.Errorf("requires %q but core is %s: %w", constraint, CoreVersion, ErrIncompatibleCore)
	}
	return nil
}
