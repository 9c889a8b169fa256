package lostfound

import "math"

// Score is a match confidence as a fraction in [0,1]. The matcher reports
// fractions while the match store persists integer percents; this type is
// the single place the two scales meet. Everything inside the client core
// works in fractions and converts with Percent at the wire boundary.
type Score float64

// Percent converts to the 0-100 integer form the match endpoints expect.
func (s Score) Percent() int {
	return int(math.Round(float64(s) * 100))
}

// FromPercent converts a stored percent back to the canonical fraction.
func FromPercent(p int) Score {
	return Score(float64(p) / 100)
}
