package curriculum

import "testing"

func fullProgram() []Classification {
	var items []Classification
	items = append(items, Classification{Kind: KindIntro})
	for d := 1; d <= ProgramDays; d++ {
		items = append(items, Classification{Kind: KindDaily, Day: d, Week: WeekOf(d)})
		if d%DaysPerWeek == 0 {
			w := WeekOf(d)
			items = append(items,
				Classification{Kind: KindWeeklyReview, Week: w},
				Classification{Kind: KindWeeklyPreview, Week: w + 1},
			)
		}
	}
	// 180 is not a multiple of 7, so the last week needs its own review.
	items = append(items, Classification{Kind: KindWeeklyReview, Week: ProgramWeeks})
	return items
}

func TestAnalyzeCoverage_Complete(t *testing.T) {
	c := AnalyzeCoverage(fullProgram())

	if !c.Complete() {
		t.Fatalf("Complete() = false; missing days %v, dup %v, missing weeks %v",
			c.MissingDays, c.DuplicateDays, c.MissingReviewWeeks)
	}
	if c.DailyDays != ProgramDays {
		t.Errorf("DailyDays = %d, want %d", c.DailyDays, ProgramDays)
	}
	if c.ReviewWeeks != ProgramWeeks {
		t.Errorf("ReviewWeeks = %d, want %d", c.ReviewWeeks, ProgramWeeks)
	}
	if c.Intros != 1 {
		t.Errorf("Intros = %d, want 1", c.Intros)
	}
}

func TestAnalyzeCoverage_Gaps(t *testing.T) {
	items := []Classification{
		{Kind: KindIntro},
		{Kind: KindDaily, Day: 1, Week: 1},
		{Kind: KindDaily, Day: 1, Week: 1},
		{Kind: KindDaily, Day: 3, Week: 1},
		{Kind: KindExcursus},
		{Kind: KindWeeklyReview, Week: 1},
		{Kind: KindWeeklyReview, Week: 0},
	}

	c := AnalyzeCoverage(items)

	if c.Complete() {
		t.Fatal("Complete() = true, want false")
	}
	if c.MissingDays[0] != 2 {
		t.Errorf("first missing day = %d, want 2", c.MissingDays[0])
	}
	if len(c.MissingDays) != ProgramDays-2 {
		t.Errorf("len(MissingDays) = %d, want %d", len(c.MissingDays), ProgramDays-2)
	}
	if len(c.DuplicateDays) != 1 || c.DuplicateDays[0] != 1 {
		t.Errorf("DuplicateDays = %v, want [1]", c.DuplicateDays)
	}
	if c.ReviewWeeks != 1 {
		t.Errorf("ReviewWeeks = %d, want 1", c.ReviewWeeks)
	}
	if c.Excursus != 1 {
		t.Errorf("Excursus = %d, want 1", c.Excursus)
	}
}
