package registry

import (
	"errors"
	"fmt"
	"time"

	"sbwt/internal/ports"
)

// Record is one environment's allocation. EnvironmentPath is the unique key.
type Record struct {
	EnvironmentPath string        `json:"environmentPath" yaml:"environmentPath"`
	Name            string        `json:"name" yaml:"name"`
	PortBase        int           `json:"portBase" yaml:"portBase"`
	Identifier      string        `json:"identifier" yaml:"identifier"`
	AllocatedAt     time.Time     `json:"allocatedAt" yaml:"allocatedAt"`
	PortMap         ports.PortMap `json:"portMap" yaml:"portMap"`
}

// ErrCorrupt matches any *CorruptError.
var ErrCorrupt = errors.New("registry is corrupt")

// CorruptError reports a registry file that exists but cannot be parsed.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCorrupt) match.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }
