package ports

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	// MaxPort is the highest valid TCP port.
	MaxPort = 65535
	// MinUnprivilegedPort is the first port outside the reserved range.
	MinUnprivilegedPort = 1024
)

var (
	// ErrAllocationExhausted means no block-aligned candidate up to MaxPort is free.
	ErrAllocationExhausted = errors.New("no free port block available")
	// ErrInvalidRange is returned by ValidateRange.
	ErrInvalidRange = errors.New("invalid port range")
	// ErrSpanTooWide means the template's ports do not fit in one block.
	ErrSpanTooWide = errors.New("template ports do not fit in one block")
)

// PortMap maps an original port to its replacement, both as decimal strings.
type PortMap map[string]string

// Overlaps reports whether the blocks starting at a and b intersect.
func Overlaps(a, b, blockSize int) bool {
	return a < b+blockSize && b < a+blockSize
}

// AllocateBase returns the first candidate startBase+k*blockSize (k >= 0)
// whose block overlaps none of the occupied blocks.
func AllocateBase(occupied []int, startBase, blockSize int) (int, error) {
	if blockSize <= 0 {
		return 0, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	if startBase < 0 {
		return 0, fmt.Errorf("start base must not be negative, got %d", startBase)
	}

	for candidate := startBase; candidate <= MaxPort-blockSize; candidate += blockSize {
		if !collides(candidate, occupied, blockSize) {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w: searched %d..%d in steps of %d against %d occupied blocks",
		ErrAllocationExhausted, startBase, MaxPort-blockSize, blockSize, len(occupied))
}

func collides(candidate int, occupied []int, blockSize int) bool {
	for _, existing := range occupied {
		if Overlaps(candidate, existing, blockSize) {
			return true
		}
	}
	return false
}

// BuildPortMap maps every extracted port to newBase plus its offset.
// Entries whose old and new values coincide are kept.
func BuildPortMap(extracted []ExtractedPort, newBase int) PortMap {
	m := make(PortMap, len(extracted))
	for _, p := range extracted {
		m[strconv.Itoa(p.Value)] = strconv.Itoa(newBase + p.Offset)
	}
	return m
}

// ValidateRange rejects blocks that start in the reserved range or run past MaxPort.
func ValidateRange(base, blockSize int) error {
	if base < MinUnprivilegedPort {
		return fmt.Errorf("%w: base port %d is below %d (reserved ports)", ErrInvalidRange, base, MinUnprivilegedPort)
	}
	if base+blockSize > MaxPort {
		return fmt.Errorf("%w: block %d+%d exceeds %d", ErrInvalidRange, base, blockSize, MaxPort)
	}
	return nil
}

// Span returns the largest offset among the extracted ports.
func Span(extracted []ExtractedPort) int {
	span := 0
	for _, p := range extracted {
		if p.Offset > span {
			span = p.Offset
		}
	}
	return span
}

// ValidateSpan rejects templates whose ports reach past the first block, since
// base+offset would then land inside the next environment's block.
func ValidateSpan(extracted []ExtractedPort, blockSize int) error {
	span := Span(extracted)
	if span < blockSize {
		return nil
	}
	return fmt.Errorf("%w: ports span %d..%d (offset %d) but the block size is %d",
		ErrSpanTooWide, MinPort(extracted), MinPort(extracted)+span, span, blockSize)
}

// ValidatePortMap rejects maps that hand out a port above MaxPort.
func ValidatePortMap(m PortMap) error {
	for oldPort, newPort := range m {
		n, err := strconv.Atoi(newPort)
		if err != nil {
			return fmt.Errorf("%w: port %q for %s is not a number", ErrInvalidRange, newPort, oldPort)
		}
		if n > MaxPort {
			return fmt.Errorf("%w: port %d for %s is above %d", ErrInvalidRange, n, oldPort, MaxPort)
		}
	}
	return nil
}

// Changed returns only the entries whose value differs from the key.
func (m PortMap) Changed() PortMap {
	out := make(PortMap, len(m))
	for oldPort, newPort := range m {
		if oldPort != newPort {
			out[oldPort] = newPort
		}
	}
	return out
}

// Inverse swaps keys and values.
func (m PortMap) Inverse() PortMap {
	out := make(PortMap, len(m))
	for oldPort, newPort := range m {
		out[newPort] = oldPort
	}
	return out
}

// SortedKeys returns the original ports in ascending numeric order.
func (m PortMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}
