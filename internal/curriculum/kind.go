// Package curriculum classifies program content and holds the calendar
// arithmetic of the 180-day program.
package curriculum

import (
	"fmt"
	"strings"
)

// ProgramDays is the length of the program in daily readings.
const ProgramDays = 180

// ProgramWeeks is the number of weeks spanned by ProgramDays.
const ProgramWeeks = (ProgramDays + DaysPerWeek - 1) / DaysPerWeek

// DaysPerWeek groups daily readings into program weeks.
const DaysPerWeek = 7

// WeeklyPreviewMarker identifies weekly preview items by title.
const WeeklyPreviewMarker = "Preview of Next Week"

// Kind is the rendering and progress behavior of a content item.
type Kind string

const (
	KindIntro         Kind = "intro"
	KindDaily         Kind = "daily"
	KindExcursus      Kind = "excursus"
	KindWeeklyPreview Kind = "weekly_preview"
	KindWeeklyReview  Kind = "weekly_review"
)

// ValidKinds returns all content kinds.
func ValidKinds() []Kind {
	return []Kind{
		KindIntro,
		KindDaily,
		KindExcursus,
		KindWeeklyPreview,
		KindWeeklyReview,
	}
}

// IsValid checks if a kind is known.
func (k Kind) IsValid() bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// Completable reports whether items of this kind toggle completed_days.
func (k Kind) Completable() bool {
	return k == KindDaily
}

// Classification is the result of classifying one item.
type Classification struct {
	Kind Kind `json:"kind"`
	// Day is set for daily items.
	Day int `json:"day,omitempty"`
	// Week is the program week the item belongs to; 0 when unknown.
	Week int `json:"week,omitempty"`
}

// Classify decides an item's kind from its stored fields. first reports
// whether the item is the first of the sequence, which separates the
// program intro from later day-0 excursus readings.
//
// The preview marker is checked first so a preview authored with a day
// number still gets the planning form.
func Classify(day *int, title string, first bool) Classification {
	if strings.Contains(title, WeeklyPreviewMarker) {
		c := Classification{Kind: KindWeeklyPreview}
		if day != nil && *day >= 1 && *day <= ProgramDays {
			// The preview looks ahead to the week after the one it closes.
			c.Week = WeekOf(*day) + 1
		}
		return c
	}

	switch {
	case day == nil:
		return Classification{Kind: KindWeeklyReview}
	case *day < 0:
		return Classification{Kind: KindWeeklyReview, Week: -*day}
	case *day == 0 && first:
		return Classification{Kind: KindIntro}
	case *day == 0, *day > ProgramDays:
		return Classification{Kind: KindExcursus}
	default:
		return Classification{Kind: KindDaily, Day: *day, Week: WeekOf(*day)}
	}
}

// WeekOf returns the program week (1-based) containing a daily day.
func WeekOf(day int) int {
	if day < 1 {
		return 1
	}
	return (day-1)/DaysPerWeek + 1
}

// ValidateDay checks that day is a daily reading number.
func ValidateDay(day int) error {
	if day < 1 || day > ProgramDays {
		return fmt.Errorf("day must be between 1 and %d, got %d", ProgramDays, day)
	}
	return nil
}

// ValidateWeek checks that week is a program week number.
func ValidateWeek(week int) error {
	if week < 1 || week > ProgramWeeks {
		return fmt.Errorf("week must be between 1 and %d, got %d", ProgramWeeks, week)
	}
	return nil
}
