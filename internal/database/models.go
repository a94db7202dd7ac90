package database

import (
	"time"
)

// ContentItem is one authored entry of the curriculum sequence.
// Content is read-only from the API; it is loaded by cmd/import.
type ContentItem struct {
	ID              int64     `db:"id" json:"id"`
	CurriculumOrder int       `db:"curriculum_order" json:"curriculum_order"`
	Day             *int      `db:"day" json:"day"` // nil for weekly review content
	Title           string    `db:"title" json:"title"`
	Subtitle        *string   `db:"subtitle" json:"subtitle,omitempty"`
	Body            string    `db:"body" json:"body,omitempty"`
	IsFirst         bool      `db:"is_first" json:"-"` // lowest curriculum_order in the table
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// User is a program participant together with their progress triple.
type User struct {
	ID              int64     `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Name            string    `db:"name" json:"name"`
	CurriculumOrder int       `db:"curriculum_order" json:"curriculum_order"`
	CurrentDay      int       `db:"current_day" json:"current_day"`
	CompletedDays   DaySet    `db:"completed_days" json:"completed_days"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Progress is the persisted progress triple of a user.
type Progress struct {
	CurriculumOrder int    `json:"curriculum_order"`
	CurrentDay      int    `json:"current_day"`
	CompletedDays   DaySet `json:"completed_days"`
}

// Progress returns the user's progress triple.
func (u *User) Progress() Progress {
	return Progress{
		CurriculumOrder: u.CurriculumOrder,
		CurrentDay:      u.CurrentDay,
		CompletedDays:   u.CompletedDays.Clone(),
	}
}

// APIKey is a stored credential. KeyHash never leaves the server.
type APIKey struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Name       string     `db:"name" json:"name"`
	KeyPrefix  string     `db:"key_prefix" json:"key_prefix"`
	KeyHash    string     `db:"key_hash" json:"-"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// APIKeyWithPlaintext is returned only when a key is created.
type APIKeyWithPlaintext struct {
	APIKey
	PlaintextKey string `json:"key"`
}

// WeeklyReview holds a user's reflections and commitments for one week
// of the program. Day-set fields hold weekday numbers (0=Sunday..6).
type WeeklyReview struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	WeekNumber   int       `db:"week_number" json:"week_number"`
	Consolations string    `db:"consolations" json:"consolations"`
	Desolations  string    `db:"desolations" json:"desolations"`
	Graces       string    `db:"graces" json:"graces"`
	Struggles    string    `db:"struggles" json:"struggles"`
	Resolutions  string    `db:"resolutions" json:"resolutions"`
	NextWeekPlan string    `db:"next_week_plan" json:"next_week_plan"`
	PrayerDays   DaySet    `db:"prayer_days" json:"prayer_days"`
	FastingDays  DaySet    `db:"fasting_days" json:"fasting_days"`
	ExerciseDays DaySet    `db:"exercise_days" json:"exercise_days"`
	MassDays     DaySet    `db:"mass_days" json:"mass_days"`
	Confession   bool      `db:"confession" json:"confession"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RuleOfLife is a user's single document of standing commitments.
type RuleOfLife struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Prayer         string    `db:"prayer" json:"prayer"`
	Fasting        string    `db:"fasting" json:"fasting"`
	Study          string    `db:"study" json:"study"`
	Service        string    `db:"service" json:"service"`
	Sacraments     string    `db:"sacraments" json:"sacraments"`
	Accountability string    `db:"accountability" json:"accountability"`
	Other          string    `db:"other" json:"other"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ContentImport is the JSON document consumed by cmd/import.
type ContentImport struct {
	Metadata struct {
		Source      string `json:"source"`
		GeneratedAt string `json:"generated_at"`
	} `json:"metadata"`
	Items []ContentImportItem `json:"items"`
}

// ContentImportItem is one item of a ContentImport.
type ContentImportItem struct {
	CurriculumOrder int     `json:"curriculum_order"`
	Day             *int    `json:"day"`
	Title           string  `json:"title"`
	Subtitle        *string `json:"subtitle,omitempty"`
	Body            string  `json:"body"`
}
