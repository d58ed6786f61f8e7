package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/utils"
)

// Ratings groups the subjective scores of one check-in.
// StressLevel and Result are optional; nil means "not recorded".
type Ratings struct {
	Energy      float64
	Focus       float64
	Mood        float64
	StressLevel *float64
	Result      *float64
}

// CheckInEntry is one recorded self-rating.
//
// An entry is either legacy (no SessionStart/SessionEnd, a point in time) or
// session-form (both bounds present). Timestamp is the start of the session
// and is the zero time when it was missing or unparsable in storage.
type CheckInEntry struct {
	ID                     int64
	Timestamp              time.Time
	Date                   string
	Hour                   *int
	Minute                 *int
	Energy                 float64
	Focus                  float64
	Mood                   float64
	StressLevel            *float64
	Result                 *float64
	SessionStart           *time.Time
	SessionEnd             *time.Time
	SessionDurationMinutes *int
}

// NewSessionEntry builds a session-form entry for a session that ran from start to end.
// Hour, minute and date are taken from start in start's location.
func NewSessionEntry(id int64, start, end time.Time, r Ratings) CheckInEntry {
	if end.Before(start) {
		end = start
	}
	e := CheckInEntry{
		ID:          id,
		Energy:      r.Energy,
		Focus:       r.Focus,
		Mood:        r.Mood,
		StressLevel: cloneFloat(r.StressLevel),
		Result:      cloneFloat(r.Result),
	}
	e.SetSession(start, end)
	return e
}

// SetSession rewrites the time fields so the entry covers [start, end].
func (e *CheckInEntry) SetSession(start, end time.Time) {
	e.Timestamp = start
	e.Date = start.Format(constants.EntryDateFormat)
	e.Hour = IntPtr(start.Hour())
	e.Minute = IntPtr(start.Minute())
	s, en := start, end
	e.SessionStart = &s
	e.SessionEnd = &en
	e.SessionDurationMinutes = IntPtr(SessionMinutes(start, end))
}

// SessionMinutes is the whole-minute length of [start, end], never less than 1.
func SessionMinutes(start, end time.Time) int {
	minutes := int(math.Floor(float64(end.Sub(start).Milliseconds()) / 60000))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// IsLegacy reports whether the entry predates session tracking.
func (e CheckInEntry) IsLegacy() bool {
	return e.SessionStart == nil && e.SessionEnd == nil
}

// Ratings returns a copy of the entry's ratings.
func (e CheckInEntry) Ratings() Ratings {
	return Ratings{
		Energy:      e.Energy,
		Focus:       e.Focus,
		Mood:        e.Mood,
		StressLevel: cloneFloat(e.StressLevel),
		Result:      cloneFloat(e.Result),
	}
}

// ResolveStart returns the start hour and minute of the entry in loc.
// Resolution order: SessionStart, then the stored Hour/Minute, then Timestamp,
// then 12:00. The hour is always folded into 0..23.
func (e CheckInEntry) ResolveStart(loc *time.Location) (hour, minute int) {
	switch {
	case e.SessionStart != nil:
		t := e.SessionStart.In(loc)
		hour, minute = t.Hour(), t.Minute()
	case e.Hour != nil:
		hour = *e.Hour
		if e.Minute != nil {
			minute = *e.Minute
		}
	case !e.Timestamp.IsZero():
		t := e.Timestamp.In(loc)
		hour, minute = t.Hour(), t.Minute()
	default:
		hour, minute = constants.DefaultStartHour, constants.DefaultStartMinute
	}
	return utils.NormalizeHour(hour), minute
}

// Clone returns a deep copy so callers never share pointer fields.
func (e CheckInEntry) Clone() CheckInEntry {
	c := e
	c.Hour = cloneInt(e.Hour)
	c.Minute = cloneInt(e.Minute)
	c.StressLevel = cloneFloat(e.StressLevel)
	c.Result = cloneFloat(e.Result)
	c.SessionStart = cloneTime(e.SessionStart)
	c.SessionEnd = cloneTime(e.SessionEnd)
	c.SessionDurationMinutes = cloneInt(e.SessionDurationMinutes)
	return c
}

// CloneEntries deep-copies a list of entries.
func CloneEntries(entries []CheckInEntry) []CheckInEntry {
	if entries == nil {
		return nil
	}
	out := make([]CheckInEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// EntryRecord is the persisted shape of a CheckInEntry.
// Times are ISO-8601 strings so that malformed values survive a round trip
// as "absent" instead of failing the whole document.
type EntryRecord struct {
	ID                     EntryID  `json:"id" yaml:"id"`
	Timestamp              string   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Date                   string   `json:"date,omitempty" yaml:"date,omitempty"`
	Hour                   *float64 `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute                 *float64 `json:"minute,omitempty" yaml:"minute,omitempty"`
	Energy                 float64  `json:"energy" yaml:"energy"`
	Focus                  float64  `json:"focus" yaml:"focus"`
	Mood                   float64  `json:"mood" yaml:"mood"`
	StressLevel            *float64 `json:"stressLevel,omitempty" yaml:"stressLevel,omitempty"`
	Result                 *float64 `json:"result,omitempty" yaml:"result,omitempty"`
	SessionStart           string   `json:"sessionStart,omitempty" yaml:"sessionStart,omitempty"`
	SessionEnd             string   `json:"sessionEnd,omitempty" yaml:"sessionEnd,omitempty"`
	SessionDurationMinutes *float64 `json:"sessionDurationMinutes,omitempty" yaml:"sessionDurationMinutes,omitempty"`
}

// Record converts the entry to its persisted shape.
func (e CheckInEntry) Record() EntryRecord {
	r := EntryRecord{
		ID:          EntryID(e.ID),
		Date:        e.Date,
		Hour:        intToFloat(e.Hour),
		Minute:      intToFloat(e.Minute),
		Energy:      e.Energy,
		Focus:       e.Focus,
		Mood:        e.Mood,
		StressLevel: cloneFloat(e.StressLevel),
		Result:      cloneFloat(e.Result),
	}
	if !e.Timestamp.IsZero() {
		r.Timestamp = utils.FormatTimestamp(e.Timestamp)
	}
	if e.SessionStart != nil {
		r.SessionStart = utils.FormatTimestamp(*e.SessionStart)
	}
	if e.SessionEnd != nil {
		r.SessionEnd = utils.FormatTimestamp(*e.SessionEnd)
	}
	r.SessionDurationMinutes = intToFloat(e.SessionDurationMinutes)
	return r
}

// Entry converts a persisted record back into an entry.
// Unparsable instants are dropped rather than rejected.
func (r EntryRecord) Entry() CheckInEntry {
	e := CheckInEntry{
		ID:                     int64(r.ID),
		Date:                   r.Date,
		Hour:                   floatToInt(r.Hour),
		Minute:                 floatToInt(r.Minute),
		Energy:                 r.Energy,
		Focus:                  r.Focus,
		Mood:                   r.Mood,
		StressLevel:            cloneFloat(r.StressLevel),
		Result:                 cloneFloat(r.Result),
		SessionDurationMinutes: floatToInt(r.SessionDurationMinutes),
	}
	if t, err := utils.ParseTimestamp(r.Timestamp); err == nil {
		e.Timestamp = t
	}
	if t, err := utils.ParseTimestamp(r.SessionStart); err == nil {
		e.SessionStart = &t
	}
	if t, err := utils.ParseTimestamp(r.SessionEnd); err == nil {
		e.SessionEnd = &t
	}
	return e
}

func (e CheckInEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

func (e *CheckInEntry) UnmarshalJSON(data []byte) error {
	var r EntryRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*e = r.Entry()
	return nil
}

// EntryID is an entry identifier that decodes from either a JSON number or a
// numeric string. Older stores wrote ids as strings.
type EntryID int64

func (id *EntryID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = EntryID(v)
	return nil
}

// UnmarshalText lets YAML and flag decoders accept the same forms.
func (id *EntryID) UnmarshalText(text []byte) error {
	return id.UnmarshalJSON(text)
}

// ParseID parses an entry id from user or stored input.
// Fractional and exponent forms (1.7e12) are accepted and truncated.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return int64(f), nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}

func floatToInt(p *float64) *int {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := int(math.Floor(*p))
	return &v
}
