package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Weekly Review Queries
// =============================================================================

const weeklyReviewColumns = `
	id, user_id, week_number,
	consolations, desolations, graces, struggles, resolutions, next_week_plan,
	prayer_days, fasting_days, exercise_days, mass_days, confession,
	created_at, updated_at
`

// UpsertWeeklyReview stores the review for (UserID, WeekNumber), creating
// it on first save. ID and timestamps on r are refreshed from the row.
func (q queries) UpsertWeeklyReview(ctx context.Context, r *WeeklyReview) error {
	_, err := sqlx.NamedExecContext(ctx, q.ext, `
		INSERT INTO weekly_reviews (
			user_id, week_number,
			consolations, desolations, graces, struggles, resolutions, next_week_plan,
			prayer_days, fasting_days, exercise_days, mass_days, confession
		) VALUES (
			:user_id, :week_number,
			:consolations, :desolations, :graces, :struggles, :resolutions, :next_week_plan,
			:prayer_days, :fasting_days, :exercise_days, :mass_days, :confession
		)
		ON CONFLICT(user_id, week_number) DO UPDATE SET
			consolations = excluded.consolations,
			desolations = excluded.desolations,
			graces = excluded.graces,
			struggles = excluded.struggles,
			resolutions = excluded.resolutions,
			next_week_plan = excluded.next_week_plan,
			prayer_days = excluded.prayer_days,
			fasting_days = excluded.fasting_days,
			exercise_days = excluded.exercise_days,
			mass_days = excluded.mass_days,
			confession = excluded.confession,
			updated_at = CURRENT_TIMESTAMP`, r)
	if err != nil {
		return fmt.Errorf("upsert weekly review: %w", err)
	}

	saved, err := q.GetWeeklyReview(ctx, r.UserID, r.WeekNumber)
	if err != nil {
		return fmt.Errorf("reload weekly review: %w", err)
	}
	*r = *saved
	return nil
}

// GetWeeklyReview returns the review for a user's week.
// Returns ErrNotFound if nothing has been saved for that week.
func (q queries) GetWeeklyReview(ctx context.Context, userID int64, week int) (*WeeklyReview, error) {
	var r WeeklyReview
	err := sqlx.GetContext(ctx, q.ext, &r,
		`SELECT `+weeklyReviewColumns+` FROM weekly_reviews WHERE user_id = ? AND week_number = ?`,
		userID, week)
	if err != nil {
		return nil, notFound(err, "query weekly review")
	}
	return &r, nil
}

// ListWeeklyReviews returns all saved reviews of a user by week.
func (q queries) ListWeeklyReviews(ctx context.Context, userID int64) ([]WeeklyReview, error) {
	reviews := []WeeklyReview{}
	err := sqlx.SelectContext(ctx, q.ext, &reviews,
		`SELECT `+weeklyReviewColumns+` FROM weekly_reviews WHERE user_id = ? ORDER BY week_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list weekly reviews: %w", err)
	}
	return reviews, nil
}

// =============================================================================
// Rule of Life Queries
// =============================================================================

const ruleOfLifeColumns = `
	id, user_id, prayer, fasting, study, service, sacraments, accountability, other,
	created_at, updated_at
`

// UpsertRuleOfLife stores the user's rule of life, creating it on first save.
func (q queries) UpsertRuleOfLife(ctx context.Context, r *RuleOfLife) error {
	_, err := sqlx.NamedExecContext(ctx, q.ext, `
		INSERT INTO rules_of_life (
			user_id, prayer, fasting, study, service, sacraments, accountability, other
		) VALUES (
			:user_id, :prayer, :fasting, :study, :service, :sacraments, :accountability, :other
		)
		ON CONFLICT(user_id) DO UPDATE SET
			prayer = excluded.prayer,
			fasting = excluded.fasting,
			study = excluded.study,
			service = excluded.service,
			sacraments = excluded.sacraments,
			accountability = excluded.accountability,
			other = excluded.other,
			updated_at = CURRENT_TIMESTAMP`, r)
	if err != nil {
		return fmt.Errorf("upsert rule of life: %w", err)
	}

	saved, err := q.GetRuleOfLife(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("reload rule of life: %w", err)
	}
	*r = *saved
	return nil
}

// GetRuleOfLife returns a user's rule of life.
// Returns ErrNotFound if it has never been saved.
func (q queries) GetRuleOfLife(ctx context.Context, userID int64) (*RuleOfLife, error) {
	var r RuleOfLife
	err := sqlx.GetContext(ctx, q.ext, &r,
		`SELECT `+ruleOfLifeColumns+` FROM rules_of_life WHERE user_id = ?`, userID)
	if err != nil {
		return nil, notFound(err, "query rule of life")
	}
	return &r, nil
}
