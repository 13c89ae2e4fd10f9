// Package cpr decodes the compact DDMMYY-XXXX birth identifier and derives
// age and star sign from it.
package cpr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat is returned for identifiers that do not encode a calendar date.
var ErrInvalidFormat = errors.New("invalid cpr format")

var separators = strings.NewReplacer("-", "", " ", "")

// ParseBirthDate extracts the birth date encoded in id.
//
// A two-digit year greater than the last two digits of now's year belongs to
// the 1900s, anything else to the 2000s. The boundary moves with the calendar.
// now is read in UTC.
func ParseBirthDate(id string, now time.Time) (time.Time, error) {
	digits := separators.Replace(id)
	if len(digits) < 6 {
		return time.Time{}, fmt.Errorf("%w: need at least 6 digits, got %q", ErrInvalidFormat, id)
	}

	day, ok1 := twoDigits(digits[0:2])
	month, ok2 := twoDigits(digits[2:4])
	yearTwo, ok3 := twoDigits(digits[4:6])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, fmt.Errorf("%w: non-digit date in %q", ErrInvalidFormat, id)
	}

	century := 2000
	if yearTwo > now.UTC().Year()%100 {
		century = 1900
	}
	year := century + yearTwo

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%d is not a date", ErrInvalidFormat, day, month, year)
	}
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 April becomes 1 May); reject that.
	if birth.Day() != day || int(birth.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%d is not a date", ErrInvalidFormat, day, month, year)
	}
	return birth, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// Age returns the age in whole years on now's UTC date, false if id does not
// parse.
func Age(id string, now time.Time) (int, bool) {
	now = now.UTC()
	birth, err := ParseBirthDate(id, now)
	if err != nil {
		return 0, false
	}
	return ageOn(birth, now), true
}

func ageOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if birth.Month() > today.Month() || (birth.Month() == today.Month() && birth.Day() > today.Day()) {
		age--
	}
	return age
}

type signBoundary struct {
	lastDay int    // last day of the month that still belongs to before
	before  string // sign up to and including lastDay
	after   string
}

var signTable = [12]signBoundary{
	{19, "Capricorn", "Aquarius"},
	{18, "Aquarius", "Pisces"},
	{20, "Pisces", "Aries"},
	{19, "Aries", "Taurus"},
	{20, "Taurus", "Gemini"},
	{20, "Gemini", "Cancer"},
	{22, "Cancer", "Leo"},
	{22, "Leo", "Virgo"},
	{22, "Virgo", "Libra"},
	{22, "Libra", "Scorpio"},
	{21, "Scorpio", "Sagittarius"},
	{21, "Sagittarius", "Capricorn"},
}

// StarSign maps a birth date to its zodiac sign.
func StarSign(birth time.Time) string {
	b := signTable[birth.Month()-1]
	if birth.Day() <= b.lastDay {
		return b.before
	}
	return b.after
}
