// Package bytesize parses and renders human-readable byte sizes for
// configuration values like frame limits and buffer capacities.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a byte count that unmarshals from strings like "16MB", "4Mi",
// or plain numbers.
//
// Binary suffixes (Ki, Mi, Gi, KiB, MiB, GiB) multiply by 1024; decimal
// suffixes (K, M, G, KB, MB, GB) multiply by 1000. A bare number or "B"
// suffix is bytes.
type Size uint64

const (
	B  Size = 1
	KB Size = 1000
	MB Size = 1000 * KB
	GB Size = 1000 * MB

	KiB Size = 1024
	MiB Size = 1024 * KiB
	GiB Size = 1024 * MiB
)

var suffixes = map[string]Size{
	"":    B,
	"b":   B,
	"k":   KB,
	"kb":  KB,
	"m":   MB,
	"mb":  MB,
	"g":   GB,
	"gb":  GB,
	"ki":  KiB,
	"kib": KiB,
	"mi":  MiB,
	"mib": MiB,
	"gi":  GiB,
	"gib": GiB,
}

// Parse converts a human-readable size string into a Size.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// split at the first non-numeric rune
	cut := len(s)
	for i, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			cut = i
			break
		}
	}
	numStr := s[:cut]
	unit := strings.ToLower(strings.TrimSpace(s[cut:]))

	mult, ok := suffixes[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size suffix %q in %q", s[cut:], s)
	}

	if strings.Contains(numStr, ".") {
		f, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size number %q", numStr)
		}
		return Size(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number %q", numStr)
	}
	return Size(n) * mult, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so Size works with
// mapstructure and yaml decoding.
func (z *Size) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*z = v
	return nil
}

// MarshalYAML renders the size in its human-readable form.
func (z Size) MarshalYAML() (any, error) {
	return z.String(), nil
}

// String renders the size with the largest exact-fit binary suffix,
// falling back to a float with two decimals.
func (z Size) String() string {
	switch {
	case z >= GiB:
		if z%GiB == 0 {
			return fmt.Sprintf("%dGiB", z/GiB)
		}
		return fmt.Sprintf("%.2fGiB", float64(z)/float64(GiB))
	case z >= MiB:
		if z%MiB == 0 {
			return fmt.Sprintf("%dMiB", z/MiB)
		}
		return fmt.Sprintf("%.2fMiB", float64(z)/float64(MiB))
	case z >= KiB:
		if z%KiB == 0 {
			return fmt.Sprintf("%dKiB", z/KiB)
		}
		return fmt.Sprintf("%.2fKiB", float64(z)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(z))
	}
}

// Int returns the size as an int for APIs that take plain byte counts.
func (z Size) Int() int {
	return int(z)
}
