package handler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidationErrors maps a field name to the constraint messages it violated.
type ValidationErrors map[string][]string

func (v ValidationErrors) add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Empty reports whether no violations were recorded.
func (v ValidationErrors) Empty() bool { return len(v) == 0 }

// startTimeRe matches a 24h clock time "H:MM" or "HH:MM".
var startTimeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// allowed poster image extensions, mirroring the upload constraint on the
// movie form.
var posterExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
}

// maxPosterBytes caps poster uploads at 2 MiB.
const maxPosterBytes = 2 << 20

// movieInput carries the raw multipart form fields of a movie write. All
// fields are optional pointers so the same type serves both the full create
// form and partial updates.
type movieInput struct {
	Title       *string
	Description *string
	Duration    *string
	Director    *string
	Genre       *string
	ReleaseYear *string
}

// validateMovie checks field constraints and returns both the violations and
// the parsed numeric fields. When required is true, absent fields are
// violations (create); otherwise absent fields are left untouched (update).
func validateMovie(in movieInput, required bool) (duration uint32, releaseYear int, errs ValidationErrors) {
	errs = ValidationErrors{}

	checkStr := func(field string, v *string, max int) {
		if v == nil {
			if required {
				errs.add(field, fmt.Sprintf("The %s field is required.", field))
			}
			return
		}
		if strings.TrimSpace(*v) == "" {
			errs.add(field, fmt.Sprintf("The %s field is required.", field))
			return
		}
		if max > 0 && len(*v) > max {
			errs.add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, max))
		}
	}
	checkStr("title", in.Title, 255)
	checkStr("description", in.Description, 0)
	checkStr("director", in.Director, 255)
	checkStr("genre", in.Genre, 255)

	if in.Duration == nil {
		if required {
			errs.add("duration", "The duration field is required.")
		}
	} else if n, err := strconv.Atoi(*in.Duration); err != nil || n < 1 {
		errs.add("duration", "The duration must be an integer of at least 1.")
	} else {
		duration = uint32(n)
	}

	maxYear := time.Now().Year() + 1
	if in.ReleaseYear == nil {
		if required {
			errs.add("release_year", "The release year field is required.")
		}
	} else if n, err := strconv.Atoi(*in.ReleaseYear); err != nil || n < 1900 || n > maxYear {
		errs.add("release_year", fmt.Sprintf("The release year must be between 1900 and %d.", maxYear))
	} else {
		releaseYear = n
	}
	return duration, releaseYear, errs
}

// validatePoster checks the uploaded file name and size against the poster
// constraints, recording violations under the "image" field.
func validatePoster(filename string, size int64, errs ValidationErrors) {
	if !posterExts[strings.ToLower(filepath.Ext(filename))] {
		errs.add("image", "The image must be a file of type: jpeg, png, jpg, gif.")
	}
	if size > maxPosterBytes {
		errs.add("image", "The image may not be greater than 2048 kilobytes.")
	}
}

// parseScreeningDate parses a "YYYY-MM-DD" date and derives the ISO week
// number and ISO weekday (Monday=1..Sunday=7) stored with the screening.
func parseScreeningDate(s string) (date time.Time, weekNumber, weekDay int, err error) {
	date, err = time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	_, weekNumber = date.ISOWeek()
	weekDay = int(date.Weekday())
	if weekDay == 0 {
		weekDay = 7
	}
	return date, weekNumber, weekDay, nil
}

// validStartTime reports whether s is a 24h "HH:MM" clock time.
func validStartTime(s string) bool {
	return startTimeRe.MatchString(s)
}
