package game

import (
	"math"
	"time"
)

// BasePoints awards time-weighted points for a correct answer:
// floor(max(0, timer − elapsed) × pointsPerSecond).
func BasePoints(timerSeconds int, elapsed time.Duration, pointsPerSecond int) int {
	remaining := float64(timerSeconds) - elapsed.Seconds()
	if remaining < 0 {
		remaining = 0
	}
	return int(math.Floor(remaining * float64(pointsPerSecond)))
}

// BeastMultiplier maps a Beast Mode team's correct-answer count to its round
// score multiplier: the whole roster correct doubles the take, one short
// keeps it, anything less forfeits it.
func BeastMultiplier(correctCount, teamSize int) int {
	switch {
	case correctCount >= teamSize:
		return 2
	case correctCount == teamSize-1:
		return 1
	default:
		return 0
	}
}
