package crawler

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()

	var area struct {
		A Area `json:"a"`
		B Area `json:"b"`
		C Area `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":{"id":"1","name":"Москва"},"b":{"id":2019},"c":{"id":null}}`), &area)
	require.NoError(t, err)
	require.Equal(t, ID("1"), area.A.ID)
	require.Equal(t, "Москва", area.A.Name)
	require.Equal(t, ID("2019"), area.B.ID)
	require.Equal(t, ID(""), area.C.ID)
}

func TestIDRejectsObjects(t *testing.T) {
	t.Parallel()

	var role ProfessionalRole
	err := json.Unmarshal([]byte(`{"id":{"nested":true}}`), &role)
	require.Error(t, err)
}

func TestVacancyIDForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		v      Vacancy
		wantID string
		wantOK bool
	}{
		{"string", Vacancy{"id": "93355"}, "93355", true},
		{"number", Vacancy{"id": json.Number("42")}, "42", true},
		{"float", Vacancy{"id": float64(7)}, "7", true},
		{"missing", Vacancy{"name": "x"}, "", false},
		{"nil", Vacancy{"id": nil}, "", false},
		{"empty", Vacancy{"id": ""}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, ok := tc.v.ID()
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantID, id)
		})
	}
}

func TestVacancyStampUsesUTCDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*60*60)
	// 02:00 local on the 3rd is still the 2nd in UTC.
	now := time.Date(2024, time.March, 3, 2, 0, 0, 0, loc)

	v := Vacancy{"id": "1"}
	v.Stamp(now, "Москва")

	require.Equal(t, "02.03.2024", v.EntryDate())
	require.Equal(t, "Москва", v.AreaName())
}

func TestVacancyPageTotalPages(t *testing.T) {
	t.Parallel()

	dec := json.NewDecoder(bytes.NewBufferString(`{"items":[{"id":1}],"pages":3}`))
	dec.UseNumber()
	var page VacancyPage
	require.NoError(t, dec.Decode(&page))
	require.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Items, 1)
	id, ok := page.Items[0].ID()
	require.True(t, ok)
	require.Equal(t, "1", id)

	var bare VacancyPage
	require.NoError(t, json.Unmarshal([]byte(`{}`), &bare))
	require.Equal(t, 1, bare.TotalPages())
	require.Nil(t, bare.Items)
}

func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	var s Summary
	s.Add(3, BatchResult{Inserted: 2, Duplicates: 1})
	s.Add(1, BatchResult{Failed: 1})

	require.Equal(t, 2, s.Pairs)
	require.Equal(t, 4, s.Fetched)
	require.Equal(t, 2, s.Inserted)
	require.Equal(t, 1, s.Duplicates)
	require.Equal(t, 1, s.Failed)
}
