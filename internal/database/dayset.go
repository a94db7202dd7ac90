package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// DaySet is an ordered set of integers stored as a JSON array.
// The zero value is an empty set.
type DaySet []int

// NewDaySet builds a sorted, de-duplicated set from days.
func NewDaySet(days ...int) DaySet {
	s := append(DaySet{}, days...)
	slices.Sort(s)
	return slices.Compact(s)
}

// Contains reports whether day is in the set.
func (s DaySet) Contains(day int) bool {
	_, ok := slices.BinarySearch(s, day)
	return ok
}

// With returns a copy of the set including day.
func (s DaySet) With(day int) DaySet {
	i, ok := slices.BinarySearch(s, day)
	if ok {
		return s.Clone()
	}
	return slices.Insert(s.Clone(), i, day)
}

// Without returns a copy of the set excluding day.
func (s DaySet) Without(day int) DaySet {
	i, ok := slices.BinarySearch(s, day)
	if !ok {
		return s.Clone()
	}
	return slices.Delete(s.Clone(), i, i+1)
}

// Clone returns an independent copy; never nil.
func (s DaySet) Clone() DaySet {
	if s == nil {
		return DaySet{}
	}
	return slices.Clone(s)
}

// Value implements driver.Valuer.
func (s DaySet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshal day set: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *DaySet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = DaySet{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan day set: unsupported type %T", src)
	}

	var days []int
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &days); err != nil {
			return fmt.Errorf("scan day set: %w", err)
		}
	}
	*s = NewDaySet(days...)
	return nil
}

// MarshalJSON always emits an array, never null.
func (s DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int(s.Clone()))
}

// UnmarshalJSON normalizes the decoded array into set order.
func (s *DaySet) UnmarshalJSON(b []byte) error {
	var days []int
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	*s = NewDaySet(days...)
	return nil
}
