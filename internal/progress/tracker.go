// Package progress implements the curriculum progress tracker: it decides
// which content item a user sees next and moves the user's pointer when
// content is completed, skipped or restarted.
//
// curriculum_order is the authoritative pointer. current_day is derived
// from it on every write and persisted alongside it, so the two stored
// fields cannot disagree.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/zapponejosh/discernment180-api/internal/curriculum"
	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/logger"
)

var (
	// ErrNoContent is returned when no content item matches a lookup.
	ErrNoContent = errors.New("no content")
	// ErrInvalidDay is returned for day numbers outside the program.
	ErrInvalidDay = errors.New("invalid day")
	// ErrInvalidWeek is returned for week numbers outside the program.
	ErrInvalidWeek = errors.New("invalid week")
	// ErrNotCompletable is returned when toggling completion on an item
	// that does not count toward completed_days.
	ErrNotCompletable = errors.New("content is not completable")
	// ErrNotSkippable is returned when advancing past a daily reading,
	// which must be completed instead.
	ErrNotSkippable = errors.New("daily content must be completed, not skipped")
)

// Session identifies the user a tracker call acts for.
type Session struct {
	UserID int64
	Email  string
}

// Content is a resolved content item with its classification and the
// user's relation to it.
type Content struct {
	Item *database.ContentItem `json:"item"`
	curriculum.Classification
	Completed bool `json:"completed"`
	IsCurrent bool `json:"is_current"`
}

// Stats summarizes a user's progress through the program.
type Stats struct {
	CompletedDays     int     `json:"completed_days"`
	TotalDays         int     `json:"total_days"`
	CompletionPercent float64 `json:"completion_percent"`
	CurrentDay        int     `json:"current_day"`
	CurrentWeek       int     `json:"current_week"`
	CompletedWeeks    int     `json:"completed_weeks"`
	ReviewsSaved      int     `json:"reviews_saved"`
	Finished          bool    `json:"finished"`
}

// querier is satisfied by both *database.DB and *database.Tx.
type querier interface {
	GetUserByID(ctx context.Context, id int64) (*database.User, error)
	GetContentByDay(ctx context.Context, day int) (*database.ContentItem, error)
	GetContentFrom(ctx context.Context, order int) (*database.ContentItem, error)
	GetNextContent(ctx context.Context, order int) (*database.ContentItem, error)
	SaveProgress(ctx context.Context, userID int64, p database.Progress) error
}

// Tracker is the only place progress is mutated.
type Tracker struct {
	db *database.DB
}

// NewTracker creates a Tracker backed by db.
func NewTracker(db *database.DB) *Tracker {
	return &Tracker{db: db}
}

// Get returns the user's stored progress.
func (t *Tracker) Get(ctx context.Context, s Session) (*database.Progress, error) {
	u, err := t.db.GetUserByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	p := u.Progress()
	return &p, nil
}

// Resolve returns the content to display. With a day it returns the item
// for that day regardless of the user's pointer; without one it returns
// the first item at or after the pointer, as Advance does.
func (t *Tracker) Resolve(ctx context.Context, s Session, day *int) (*Content, error) {
	u, err := t.db.GetUserByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var item *database.ContentItem
	if day != nil {
		if err := curriculum.ValidateDay(*day); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDay, err)
		}
		item, err = t.db.GetContentByDay(ctx, *day)
	} else {
		item, err = t.db.GetContentFrom(ctx, u.CurriculumOrder)
	}
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNoContent
		}
		return nil, fmt.Errorf("load content: %w", err)
	}

	c := &Content{
		Item:           item,
		Classification: classify(item),
		IsCurrent:      day == nil || item.CurriculumOrder == u.CurriculumOrder,
	}
	if c.Kind.Completable() {
		c.Completed = u.CompletedDays.Contains(c.Day)
	}
	return c, nil
}

// SetCompletion marks a daily reading complete or incomplete.
//
// Completing day D adds it to completed_days and moves the pointer to the
// item after D's, never backwards. Un-completing removes D and, when the
// pointer still sits where completing D put it, moves the pointer back to
// D's item. The triple is written even when the set is unchanged.
func (t *Tracker) SetCompletion(ctx context.Context, s Session, day int, complete bool) (*database.Progress, error) {
	if err := curriculum.ValidateDay(day); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}

	var result database.Progress
	var changed bool
	err := t.db.WithTx(ctx, func(tx *database.Tx) error {
		u, err := tx.GetUserByID(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		item, err := tx.GetContentByDay(ctx, day)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrNoContent
			}
			return fmt.Errorf("load content for day %d: %w", day, err)
		}
		if !classify(item).Kind.Completable() {
			return ErrNotCompletable
		}

		next, err := orderAfter(ctx, tx, item.CurriculumOrder)
		if err != nil {
			return err
		}

		p := u.Progress()
		changed = p.CompletedDays.Contains(day) != complete
		if complete {
			p.CompletedDays = p.CompletedDays.With(day)
			if next > p.CurriculumOrder {
				p.CurriculumOrder = next
			}
		} else {
			p.CompletedDays = p.CompletedDays.Without(day)
			if p.CurriculumOrder == next {
				p.CurriculumOrder = item.CurriculumOrder
			}
		}

		if err := save(ctx, tx, s.UserID, &p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "completion saved",
		slog.Int("day", day),
		slog.Bool("complete", complete),
		slog.Bool("set_changed", changed),
		slog.Int("curriculum_order", result.CurriculumOrder),
		slog.Int("current_day", result.CurrentDay),
	)
	return &result, nil
}

// Advance moves the pointer past the item it currently points at without
// touching completed_days. Used for excursus and weekly review content;
// a daily reading at the pointer returns ErrNotSkippable.
func (t *Tracker) Advance(ctx context.Context, s Session) (*database.Progress, error) {
	var result database.Progress
	err := t.db.WithTx(ctx, func(tx *database.Tx) error {
		u, err := tx.GetUserByID(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		cur, err := tx.GetContentFrom(ctx, u.CurriculumOrder)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrNoContent
			}
			return fmt.Errorf("load current content: %w", err)
		}
		if classify(cur).Kind == curriculum.KindDaily {
			return ErrNotSkippable
		}

		p := u.Progress()
		if p.CurriculumOrder, err = orderAfter(ctx, tx, cur.CurriculumOrder); err != nil {
			return err
		}
		if err := save(ctx, tx, s.UserID, &p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "progress advanced",
		slog.Int("curriculum_order", result.CurriculumOrder),
		slog.Int("current_day", result.CurrentDay),
	)
	return &result, nil
}

// SaveWeeklyPlan stores the planning form of a weekly preview. When the
// pointer sits on a weekly preview it also advances past it in the same
// transaction; anywhere else the form is saved and the pointer stays put.
func (t *Tracker) SaveWeeklyPlan(ctx context.Context, s Session, review *database.WeeklyReview) (*database.Progress, error) {
	if err := curriculum.ValidateWeek(review.WeekNumber); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeek, err)
	}
	review.UserID = s.UserID

	var result database.Progress
	var advanced bool
	err := t.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := tx.UpsertWeeklyReview(ctx, review); err != nil {
			return err
		}

		u, err := tx.GetUserByID(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		p := u.Progress()
		cur, err := tx.GetContentFrom(ctx, p.CurriculumOrder)
		switch {
		case database.IsNotFound(err):
			result = p
			return nil
		case err != nil:
			return fmt.Errorf("load current content: %w", err)
		case classify(cur).Kind != curriculum.KindWeeklyPreview:
			result = p
			return nil
		}

		advanced = true
		if p.CurriculumOrder, err = orderAfter(ctx, tx, cur.CurriculumOrder); err != nil {
			return err
		}
		if err := save(ctx, tx, s.UserID, &p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "weekly plan saved",
		slog.Int("week", review.WeekNumber),
		slog.Bool("advanced", advanced),
		slog.Int("curriculum_order", result.CurriculumOrder),
	)
	return &result, nil
}

// Begin restarts the program from the first position (curriculum_order 1,
// or the lowest authored position above it). completed_days is kept so a
// restart does not erase history.
func (t *Tracker) Begin(ctx context.Context, s Session) (*database.Progress, error) {
	var result database.Progress
	err := t.db.WithTx(ctx, func(tx *database.Tx) error {
		u, err := tx.GetUserByID(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		p := u.Progress()
		p.CurriculumOrder = 1
		// Authored sequences may start above 1.
		first, err := tx.GetContentFrom(ctx, 1)
		switch {
		case err == nil:
			p.CurriculumOrder = first.CurriculumOrder
		case !database.IsNotFound(err):
			return fmt.Errorf("load first content: %w", err)
		}
		if err := save(ctx, tx, s.UserID, &p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "program restarted", slog.Int("current_day", result.CurrentDay))
	return &result, nil
}

// Stats summarizes the user's progress.
func (t *Tracker) Stats(ctx context.Context, s Session) (*Stats, error) {
	u, err := t.db.GetUserByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	reviews, err := t.db.ListWeeklyReviews(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	completed := 0
	for _, d := range u.CompletedDays {
		if d >= 1 && d <= curriculum.ProgramDays {
			completed++
		}
	}

	weeks := 0
	for w := 1; w <= curriculum.ProgramWeeks; w++ {
		first := (w-1)*curriculum.DaysPerWeek + 1
		last := min(first+curriculum.DaysPerWeek-1, curriculum.ProgramDays)
		full := true
		for d := first; d <= last; d++ {
			if !u.CompletedDays.Contains(d) {
				full = false
				break
			}
		}
		if full {
			weeks++
		}
	}

	pct := float64(completed) / float64(curriculum.ProgramDays) * 100
	return &Stats{
		CompletedDays:     completed,
		TotalDays:         curriculum.ProgramDays,
		CompletionPercent: math.Round(pct*10) / 10,
		CurrentDay:        u.CurrentDay,
		CurrentWeek:       min(curriculum.WeekOf(u.CurrentDay), curriculum.ProgramWeeks),
		CompletedWeeks:    weeks,
		ReviewsSaved:      len(reviews),
		Finished:          u.CurrentDay > curriculum.ProgramDays,
	}, nil
}

// save derives current_day from the pointer and writes the triple.
func save(ctx context.Context, q querier, userID int64, p *database.Progress) error {
	day, err := currentDay(ctx, q, p.CurriculumOrder)
	if err != nil {
		return err
	}
	p.CurrentDay = day

	if err := q.SaveProgress(ctx, userID, *p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// currentDay is the day of the first daily item at or after order, or
// ProgramDays+1 once no daily item remains.
func currentDay(ctx context.Context, q querier, order int) (int, error) {
	for {
		item, err := q.GetContentFrom(ctx, order)
		if err != nil {
			if database.IsNotFound(err) {
				return curriculum.ProgramDays + 1, nil
			}
			return 0, fmt.Errorf("derive current day: %w", err)
		}
		if c := classify(item); c.Kind == curriculum.KindDaily {
			return c.Day, nil
		}
		order = item.CurriculumOrder + 1
	}
}

// orderAfter is the curriculum_order of the item following order. Past
// the end of the sequence it is order+1.
func orderAfter(ctx context.Context, q querier, order int) (int, error) {
	next, err := q.GetNextContent(ctx, order)
	if err != nil {
		if database.IsNotFound(err) {
			return order + 1, nil
		}
		return 0, fmt.Errorf("load next content: %w", err)
	}
	return next.CurriculumOrder, nil
}

func classify(item *database.ContentItem) curriculum.Classification {
	return curriculum.Classify(item.Day, item.Title, item.IsFirst)
}
