package submission

import (
	"strconv"
	"strings"
	"time"
)

// RevenueYears returns the fiscal years, most recent first, for which revenue
// must be disclosed given the declared creation year. Disclosure covers at most
// the three full years preceding now:
//
//   - the before-2022 sentinel asks for all three,
//   - a literal year Y asks from last year down to max(Y, now-3),
//   - a creation year equal to the current year asks for nothing.
//
// Unparseable creation years yield no disclosure years.
func RevenueYears(anneeCreation string, now time.Time) []int {
	current := now.Year()
	floor := current - 3

	anneeCreation = strings.TrimSpace(anneeCreation)
	var from int
	switch {
	case anneeCreation == CreationBefore2022:
		from = floor
	default:
		y, err := strconv.Atoi(anneeCreation)
		if err != nil {
			return nil
		}
		from = y
		if from < floor {
			from = floor
		}
	}

	var years []int
	for y := current - 1; y >= from; y-- {
		years = append(years, y)
	}
	return years
}
