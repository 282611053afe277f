package models

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Overs is a count of overs in cricket notation: the integer part is whole
// overs and the first decimal digit is balls (0-5) in the current over.
//
// 14.3 is 87 balls, not 14.3 * 6.
type Overs float64

// ParseOvers reads overs from provider text such as "14.3" or "14.3*",
// stripping trailing non-digit markers. Anything unparseable is 0.
func ParseOvers(s string) Overs {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool { return !unicode.IsDigit(r) })
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return OversFromFloat(v)
}

// OversFromFloat clamps non-finite and negative values to 0.
func OversFromFloat(v float64) Overs {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return Overs(v)
}

// Whole returns the completed overs.
func (o Overs) Whole() int {
	if o <= 0 {
		return 0
	}
	return int(math.Floor(float64(o)))
}

// Remainder returns the balls bowled in the current over.
func (o Overs) Remainder() int {
	if o <= 0 {
		return 0
	}
	return int(math.Round((float64(o) - math.Floor(float64(o))) * 10))
}

// Balls converts cricket notation to legal deliveries.
func (o Overs) Balls() int {
	return o.Whole()*6 + o.Remainder()
}

// Decimal is the true number of overs, e.g. 14.3 -> 14.5.
func (o Overs) Decimal() float64 {
	return float64(o.Balls()) / 6
}

func (o Overs) String() string {
	if o.Remainder() == 0 {
		return strconv.Itoa(o.Whole())
	}
	return strconv.Itoa(o.Whole()) + "." + strconv.Itoa(o.Remainder())
}

// RunRate is runs per six legal deliveries, 0 when nothing has been bowled.
func RunRate(runs int, o Overs) float64 {
	balls := o.Balls()
	if balls == 0 {
		return 0
	}
	return float64(runs) * 6 / float64(balls)
}
