package api

import (
	"fmt"
	"net/http"

	"github.com/zapponejosh/discernment180-api/internal/curriculum"
	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/logger"
)

// weeklyReviewRequest is the body of the weekly review and planning forms.
type weeklyReviewRequest struct {
	Consolations string          `json:"consolations"`
	Desolations  string          `json:"desolations"`
	Graces       string          `json:"graces"`
	Struggles    string          `json:"struggles"`
	Resolutions  string          `json:"resolutions"`
	NextWeekPlan string          `json:"next_week_plan"`
	PrayerDays   database.DaySet `json:"prayer_days"`
	FastingDays  database.DaySet `json:"fasting_days"`
	ExerciseDays database.DaySet `json:"exercise_days"`
	MassDays     database.DaySet `json:"mass_days"`
	Confession   bool            `json:"confession"`
}

func (req weeklyReviewRequest) validate() error {
	for name, set := range map[string]database.DaySet{
		"prayer_days":   req.PrayerDays,
		"fasting_days":  req.FastingDays,
		"exercise_days": req.ExerciseDays,
		"mass_days":     req.MassDays,
	} {
		for _, d := range set {
			if d < 0 || d > 6 {
				return fmt.Errorf("%s must contain weekdays 0-6, got %d", name, d)
			}
		}
	}
	return nil
}

func (req weeklyReviewRequest) toModel(userID int64, week int) *database.WeeklyReview {
	return &database.WeeklyReview{
		UserID:       userID,
		WeekNumber:   week,
		Consolations: req.Consolations,
		Desolations:  req.Desolations,
		Graces:       req.Graces,
		Struggles:    req.Struggles,
		Resolutions:  req.Resolutions,
		NextWeekPlan: req.NextWeekPlan,
		PrayerDays:   req.PrayerDays,
		FastingDays:  req.FastingDays,
		ExerciseDays: req.ExerciseDays,
		MassDays:     req.MassDays,
		Confession:   req.Confession,
	}
}

// weekParam parses and validates the {week} URL parameter.
func weekParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	week, ok := intParam(w, r, "week")
	if !ok {
		return 0, false
	}
	if err := curriculum.ValidateWeek(week); err != nil {
		WriteBadRequest(w, err.Error())
		return 0, false
	}
	return week, true
}

// decodeReview reads and validates a weekly review body.
func decodeReview(w http.ResponseWriter, r *http.Request) (weeklyReviewRequest, bool) {
	var req weeklyReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return req, false
	}
	if err := req.validate(); err != nil {
		WriteBadRequest(w, err.Error())
		return req, false
	}
	return req, true
}

// GetWeeklyReview handles GET /api/v1/reviews/{week}
func (h *Handlers) GetWeeklyReview(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}

	review, err := h.db.GetWeeklyReview(r.Context(), GetUser(r).ID, week)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "No review saved for this week")
			return
		}
		logger.Error(r.Context(), "failed to get weekly review", err)
		WriteInternalError(w, "Failed to retrieve weekly review")
		return
	}
	WriteSuccess(w, review)
}

// SaveWeeklyReview handles PUT /api/v1/reviews/{week}
func (h *Handlers) SaveWeeklyReview(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	review := req.toModel(GetUser(r).ID, week)
	if err := h.db.UpsertWeeklyReview(r.Context(), review); err != nil {
		logger.Error(r.Context(), "failed to save weekly review", err)
		WriteInternalError(w, "Failed to save weekly review")
		return
	}
	WriteSuccess(w, review)
}

// SaveWeeklyPlan handles POST /api/v1/reviews/{week}/plan, the planning
// form shown on a weekly preview. Saving also moves past the preview.
func (h *Handlers) SaveWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	req, ok := decodeReview(w, r)
	if !ok {
		return
	}

	review := req.toModel(GetUser(r).ID, week)
	p, err := h.tracker.SaveWeeklyPlan(r.Context(), GetSession(r), review)
	if err != nil {
		h.writeTrackerError(w, r, err, "Failed to save weekly plan")
		return
	}

	WriteSuccess(w, map[string]any{
		"review":   review,
		"progress": p,
	})
}

// ruleOfLifeRequest is the body of the rule of life form.
type ruleOfLifeRequest struct {
	Prayer         string `json:"prayer"`
	Fasting        string `json:"fasting"`
	Study          string `json:"study"`
	Service        string `json:"service"`
	Sacraments     string `json:"sacraments"`
	Accountability string `json:"accountability"`
	Other          string `json:"other"`
}

// GetRuleOfLife handles GET /api/v1/rule-of-life
func (h *Handlers) GetRuleOfLife(w http.ResponseWriter, r *http.Request) {
	rule, err := h.db.GetRuleOfLife(r.Context(), GetUser(r).ID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "No rule of life saved")
			return
		}
		logger.Error(r.Context(), "failed to get rule of life", err)
		WriteInternalError(w, "Failed to retrieve rule of life")
		return
	}
	WriteSuccess(w, rule)
}

// SaveRuleOfLife handles PUT /api/v1/rule-of-life
func (h *Handlers) SaveRuleOfLife(w http.ResponseWriter, r *http.Request) {
	var req ruleOfLifeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	rule := &database.RuleOfLife{
		UserID:         GetUser(r).ID,
		Prayer:         req.Prayer,
		Fasting:        req.Fasting,
		Study:          req.Study,
		Service:        req.Service,
		Sacraments:     req.Sacraments,
		Accountability: req.Accountability,
		Other:          req.Other,
	}
	if err := h.db.UpsertRuleOfLife(r.Context(), rule); err != nil {
		logger.Error(r.Context(), "failed to save rule of life", err)
		WriteInternalError(w, "Failed to save rule of life")
		return
	}
	WriteSuccess(w, rule)
}
