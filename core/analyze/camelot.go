package analyze

import "math"

// Camelot wheel codes indexed by pitch class (0 = C through 11 = B).
var (
	camelotMajor = [12]string{"8B", "3B", "10B", "5B", "12B", "7B", "2B", "9B", "4B", "11B", "6B", "1B"}
	camelotMinor = [12]string{"5A", "12A", "7A", "2A", "9A", "4A", "11A", "6A", "1A", "8A", "3A", "10A"}
)

// CamelotKey converts a pitch class and mode (1 major, 0 minor) to
// Camelot notation. Unknown pitch classes yield an empty string.
func CamelotKey(pitchClass, mode int) string {
	if pitchClass < 0 || pitchClass > 11 {
		return ""
	}
	if mode == 1 {
		return camelotMajor[pitchClass]
	}
	return camelotMinor[pitchClass]
}

// NormalizeBPM folds a tempo into the 80-200 range by octave doubling
// or halving. Detected tempos are often off by a factor of two.
func NormalizeBPM(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	for bpm < 80 {
		bpm *= 2
	}
	for bpm > 200 {
		bpm /= 2
	}
	return math.Round(bpm)
}

// EnergyScale maps a 0-1 energy fraction onto the 1-10 scale.
func EnergyScale(fraction float64) float64 {
	v := math.Round(fraction * 10)
	if v < 1 {
		v = 1
	}
	if v > 10 {
		v = 10
	}
	return v
}
