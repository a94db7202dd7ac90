package curriculum

import "slices"

// Coverage reports how completely an authored sequence covers the
// program: every daily reading and every weekly review.
type Coverage struct {
	Items              int   `json:"items"`
	Intros             int   `json:"intros"`
	Excursus           int   `json:"excursus"`
	Previews           int   `json:"previews"`
	DailyDays          int   `json:"daily_days"`
	MissingDays        []int `json:"missing_days"`
	DuplicateDays      []int `json:"duplicate_days"`
	ReviewWeeks        int   `json:"review_weeks"`
	MissingReviewWeeks []int `json:"missing_review_weeks"`
}

// Complete reports whether every day and weekly review is present
// exactly once.
func (c Coverage) Complete() bool {
	return len(c.MissingDays) == 0 && len(c.DuplicateDays) == 0 && len(c.MissingReviewWeeks) == 0
}

// AnalyzeCoverage tallies classified items in sequence order.
func AnalyzeCoverage(items []Classification) Coverage {
	c := Coverage{
		Items:              len(items),
		MissingDays:        []int{},
		DuplicateDays:      []int{},
		MissingReviewWeeks: []int{},
	}

	days := make(map[int]int)
	reviews := make(map[int]bool)
	for _, it := range items {
		switch it.Kind {
		case KindIntro:
			c.Intros++
		case KindExcursus:
			c.Excursus++
		case KindWeeklyPreview:
			c.Previews++
		case KindWeeklyReview:
			if it.Week >= 1 && it.Week <= ProgramWeeks {
				reviews[it.Week] = true
			}
		case KindDaily:
			days[it.Day]++
		}
	}

	for d := 1; d <= ProgramDays; d++ {
		switch n := days[d]; {
		case n == 0:
			c.MissingDays = append(c.MissingDays, d)
		case n > 1:
			c.DuplicateDays = append(c.DuplicateDays, d)
		}
	}
	c.DailyDays = ProgramDays - len(c.MissingDays)

	for w := 1; w <= ProgramWeeks; w++ {
		if !reviews[w] {
			c.MissingReviewWeeks = append(c.MissingReviewWeeks, w)
		}
	}
	c.ReviewWeeks = ProgramWeeks - len(c.MissingReviewWeeks)

	slices.Sort(c.DuplicateDays)
	return c
}
