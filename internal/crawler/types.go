package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// EntryDateLayout is the calendar-day format stamped onto stored vacancies (DD.MM.YYYY).
const EntryDateLayout = "02.01.2006"

// Fields added to every vacancy before it is persisted.
const (
	FieldID        = "id"
	FieldURL       = "url"
	FieldEntryDate = "entry_date"
	FieldAreaName  = "area_name"
)

// ID is an upstream identifier. The API emits ids both as JSON strings and
// as numbers, so both forms decode into the same value.
type ID string

// UnmarshalJSON accepts `"42"` and `42`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// Country is an entry of the upstream country list.
type Country struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Area is a geographic region recognized by the upstream service.
type Area struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Areas []Area `json:"areas,omitempty"`
}

// ProfessionalRole is a job-category taxonomy entry used to filter listings.
type ProfessionalRole struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// RoleCategory groups professional roles.
type RoleCategory struct {
	ID    ID                 `json:"id"`
	Name  string             `json:"name"`
	Roles []ProfessionalRole `json:"roles"`
}

// Vacancy is one listing as returned by the upstream API. Apart from the id
// and the two fields stamped before persistence, the payload is opaque.
type Vacancy map[string]any

// ID reports the listing id in string form.
func (v Vacancy) ID() (string, bool) {
	raw, ok := v[FieldID]
	if !ok || raw == nil {
		return "", false
	}
	var id string
	switch val := raw.(type) {
	case string:
		id = val
	case json.Number:
		id = val.String()
	default:
		id = fmt.Sprint(val)
	}
	return id, id != ""
}

// URL returns the listing URL, if any. It only feeds log lines.
func (v Vacancy) URL() string {
	if s, ok := v[FieldURL].(string); ok {
		return s
	}
	return ""
}

// EntryDate returns the stamped ingestion date, empty before Stamp runs.
func (v Vacancy) EntryDate() string {
	if s, ok := v[FieldEntryDate].(string); ok {
		return s
	}
	return ""
}

// AreaName returns the stamped area name.
func (v Vacancy) AreaName() string {
	if s, ok := v[FieldAreaName].(string); ok {
		return s
	}
	return ""
}

// Stamp records the ingestion date (UTC calendar day) and the area the
// listing was discovered under.
func (v Vacancy) Stamp(now time.Time, areaName string) {
	v[FieldEntryDate] = now.UTC().Format(EntryDateLayout)
	v[FieldAreaName] = areaName
}

// VacancyPage is one page of the vacancy search endpoint. Items is nil when
// the response carried no items field at all.
type VacancyPage struct {
	Items   []Vacancy `json:"items"`
	Found   int       `json:"found"`
	Page    int       `json:"page"`
	Pages   *int      `json:"pages"`
	PerPage int       `json:"per_page"`
}

// TotalPages returns the reported page count, defaulting to 1.
func (p VacancyPage) TotalPages() int {
	if p.Pages == nil {
		return 1
	}
	return *p.Pages
}

// BatchResult counts the outcome of persisting one area x role batch.
type BatchResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Summary aggregates the results of a full sweep.
type Summary struct {
	RunID      string        `json:"run_id"`
	Areas      int           `json:"areas"`
	Roles      int           `json:"roles"`
	Pairs      int           `json:"pairs"`
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// Add folds a batch into the summary.
func (s *Summary) Add(fetched int, b BatchResult) {
	s.Pairs++
	s.Fetched += fetched
	s.Inserted += b.Inserted
	s.Duplicates += b.Duplicates
	s.Failed += b.Failed
}
