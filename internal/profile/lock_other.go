//go:build !linux && !darwin

package profile

import (
	"fmt"
	"os"
)

// flockExclusive is unsupported outside linux/darwin; Peek's desktop build
// targets only ship for those platforms today.
func flockExclusive(f *os.File) error {
	return fmt.Errorf("profile: single-instance lock unsupported on this platform")
}
