package handler

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func fullMovieInput() movieInput {
	return movieInput{
		Title:       str("Arrival"),
		Description: str("A linguist decodes an alien language."),
		Duration:    str("116"),
		Director:    str("Denis Villeneuve"),
		Genre:       str("Sci-Fi"),
		ReleaseYear: str("2016"),
	}
}

func TestValidateMovie_AcceptsCompleteInput(t *testing.T) {
	duration, year, errs := validateMovie(fullMovieInput(), true)

	require.True(t, errs.Empty(), "unexpected violations: %v", errs)
	assert.Equal(t, uint32(116), duration)
	assert.Equal(t, 2016, year)
}

func TestValidateMovie_RequiredFieldsOnCreate(t *testing.T) {
	_, _, errs := validateMovie(movieInput{}, true)

	for _, field := range []string{"title", "description", "duration", "director", "genre", "release_year"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateMovie_AbsentFieldsAllowedOnUpdate(t *testing.T) {
	_, _, errs := validateMovie(movieInput{Title: str("New Title")}, false)

	assert.True(t, errs.Empty(), "unexpected violations: %v", errs)
}

func TestValidateMovie_ReleaseYearBounds(t *testing.T) {
	nextYear := time.Now().Year() + 1

	cases := []struct {
		year string
		ok   bool
	}{
		{"1899", false},
		{"1900", true},
		{strconv.Itoa(nextYear), true},
		{strconv.Itoa(nextYear + 1), false},
		{"abc", false},
	}
	for _, tc := range cases {
		in := fullMovieInput()
		in.ReleaseYear = str(tc.year)
		_, _, errs := validateMovie(in, true)
		if tc.ok {
			assert.NotContains(t, errs, "release_year", "year %s", tc.year)
		} else {
			assert.Contains(t, errs, "release_year", "year %s", tc.year)
		}
	}
}

func TestValidateMovie_DurationAtLeastOne(t *testing.T) {
	for _, bad := range []string{"0", "-5", "ninety"} {
		in := fullMovieInput()
		in.Duration = str(bad)
		_, _, errs := validateMovie(in, true)
		assert.Contains(t, errs, "duration", "duration %s", bad)
	}
}

func TestValidateMovie_TitleLengthCap(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	in := fullMovieInput()
	in.Title = str(string(long))

	_, _, errs := validateMovie(in, true)

	assert.Contains(t, errs, "title")
}

func TestValidatePoster(t *testing.T) {
	errs := ValidationErrors{}
	validatePoster("poster.png", 1024, errs)
	assert.True(t, errs.Empty())

	errs = ValidationErrors{}
	validatePoster("poster.pdf", 1024, errs)
	assert.Contains(t, errs, "image")

	errs = ValidationErrors{}
	validatePoster("poster.jpg", maxPosterBytes+1, errs)
	assert.Contains(t, errs, "image")
}

func TestValidStartTime(t *testing.T) {
	valid := []string{"00:00", "9:30", "09:30", "14:00", "23:59"}
	for _, s := range valid {
		assert.True(t, validStartTime(s), s)
	}
	invalid := []string{"24:00", "12:60", "noon", "7", "07:5", "14:00:00", ""}
	for _, s := range invalid {
		assert.False(t, validStartTime(s), s)
	}
}

func TestParseScreeningDate_DerivesISOWeekFields(t *testing.T) {
	cases := []struct {
		date       string
		weekNumber int
		weekDay    int
	}{
		{"2024-01-01", 1, 1},  // Monday, ISO week 1
		{"2023-01-01", 52, 7}, // Sunday, belongs to ISO week 52 of 2022
		{"2024-12-30", 1, 1},  // Monday, rolls into ISO week 1 of 2025
		{"2024-06-15", 24, 6}, // Saturday mid-year
	}
	for _, tc := range cases {
		date, weekNumber, weekDay, err := parseScreeningDate(tc.date)
		require.NoError(t, err, tc.date)
		assert.Equal(t, tc.weekNumber, weekNumber, fmt.Sprintf("%s week number", tc.date))
		assert.Equal(t, tc.weekDay, weekDay, fmt.Sprintf("%s week day", tc.date))
		assert.Equal(t, tc.date, date.Format("2006-01-02"))
	}
}

func TestParseScreeningDate_RejectsBadInput(t *testing.T) {
	for _, bad := range []string{"2024-13-01", "01/02/2024", "tomorrow", ""} {
		_, _, _, err := parseScreeningDate(bad)
		assert.Error(t, err, bad)
	}
}
