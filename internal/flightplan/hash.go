// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package flightplan

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/tomtom215/xcrelay/internal/models"
)

// Hash modes accepted by HasherFor.
const (
	ModeLegacy = "legacy"
	ModeLatLng = "latlng"
)

// Hasher computes the content hash of a plan.
type Hasher func(plan models.FlightPlan) string

// HasherFor returns the hasher for a configured hash mode. An empty mode selects
// the legacy hash.
func HasherFor(mode string) (Hasher, error) {
	switch mode {
	case "", ModeLegacy:
		return HashLegacy, nil
	case ModeLatLng:
		return HashLatLng, nil
	default:
		return nil, fmt.Errorf("unknown hash mode %q (want %s or %s)", mode, ModeLegacy, ModeLatLng)
	}
}

// HashLegacy is the wire-compatible hash. Each coordinate contributes its latitude twice.
func HashLegacy(plan models.FlightPlan) string {
	return hashString(serialize(plan, false))
}

// HashLatLng hashes latitude and longitude of each coordinate.
func HashLatLng(plan models.FlightPlan) string {
	return hashString(serialize(plan, true))
}

func serialize(plan models.FlightPlan, withLng bool) string {
	var b strings.Builder
	b.WriteString("Plan")
	b.WriteString(plan.Name)
	for i, wp := range plan.Waypoints {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(wp.Name)
		if wp.Optional {
			b.WriteByte('O')
		} else {
			b.WriteByte('X')
		}
		for _, ll := range wp.LatLng {
			b.WriteString(toFixed4(ll.Lat))
			if withLng {
				b.WriteString(toFixed4(ll.Lng))
			} else {
				b.WriteString(toFixed4(ll.Lat))
			}
		}
	}
	return b.String()
}

// hashString folds s over UTF-16 code units with 32-bit wraparound.
func hashString(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return absHex(h)
}

// absHex widens before negating so math.MinInt32 maps to 80000000.
func absHex(h int32) string {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}

var tenThousand = big.NewRat(10000, 1)

// toFixed4 formats x with four decimals exactly like ECMAScript toFixed(4): the
// exact binary value is scaled, ties round up in magnitude, and the sign is kept
// for any negative input that rounds to zero. Negative zero prints unsigned.
func toFixed4(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case math.Abs(x) >= 1e21:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	neg := x < 0
	r := new(big.Rat).SetFloat64(math.Abs(x))
	r.Mul(r, tenThousand)

	n, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	// rem/denom >= 1/2
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if len(digits) < 5 {
		digits = strings.Repeat("0", 5-len(digits)) + digits
	}
	out := digits[:len(digits)-4] + "." + digits[len(digits)-4:]
	if neg {
		return "-" + out
	}
	return out
}
