package cpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestParseBirthDate(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want time.Time
	}{
		{"dashed", "150688-1234", time.Date(1988, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"spaces", "15 06 88 1234", time.Date(1988, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"digits only", "1506881234", time.Date(1988, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"exactly six digits", "010101", time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"year above current resolves to 1900s", "010130-0000", time.Date(1930, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"year below current resolves to 2000s", "010110-0000", time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"current year resolves to 2000s", "010125-0000", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"leap day", "290200-0000", time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBirthDate(tt.id, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBirthDateRejects(t *testing.T) {
	for _, id := range []string{
		"",
		"12345",
		"12-34-5",
		"310488-1234", // 31 April
		"290201-1234", // 2001 is not a leap year
		"001288-1234",
		"150088-1234",
		"151388-1234",
		"ab0688-1234",
		"+10688-1234",
	} {
		t.Run(id, func(t *testing.T) {
			_, err := ParseBirthDate(id, fixedNow)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestCenturyBoundaryMovesWithCalendar(t *testing.T) {
	newYear2026 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	nye2025 := time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)

	before, err := ParseBirthDate("010126-0000", nye2025)
	require.NoError(t, err)
	assert.Equal(t, 1926, before.Year())

	after, err := ParseBirthDate("010126-0000", newYear2026)
	require.NoError(t, err)
	assert.Equal(t, 2026, after.Year())
}

func TestAge(t *testing.T) {
	tests := []struct {
		name string
		id   string
		now  time.Time
		want int
	}{
		{"birthday passed", "150188-0000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 37},
		{"birthday today", "100388-0000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 37},
		{"birthday tomorrow", "110388-0000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 36},
		{"later month", "150688-0000", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 36},
		{"leap day before march", "290200-0000", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), 24},
		{"leap day on march first", "290200-0000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Age(tt.id, tt.now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Age("310488-1234", fixedNow)
	assert.False(t, ok)
}

func TestAgeAndCenturyShareOneCalendar(t *testing.T) {
	// New Year's morning in UTC+10 is still 31 December 2025 in UTC.
	now := time.Date(2026, 1, 1, 5, 0, 0, 0, time.FixedZone("UTC+10", 10*60*60))

	birth, err := ParseBirthDate("010126-0000", now)
	require.NoError(t, err)
	assert.Equal(t, 1926, birth.Year())

	age, ok := Age("010126-0000", now)
	require.True(t, ok)
	assert.Equal(t, 99, age)

	d := NewFixed(now).Derive("010126-0000")
	require.NotNil(t, d.Age)
	assert.Equal(t, 99, *d.Age)
}

func TestStarSignBoundaries(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  string
	}{
		{time.January, 19, "Capricorn"}, {time.January, 20, "Aquarius"},
		{time.February, 18, "Aquarius"}, {time.February, 19, "Pisces"},
		{time.March, 20, "Pisces"}, {time.March, 21, "Aries"},
		{time.April, 19, "Aries"}, {time.April, 20, "Taurus"},
		{time.May, 20, "Taurus"}, {time.May, 21, "Gemini"},
		{time.June, 20, "Gemini"}, {time.June, 21, "Cancer"},
		{time.July, 22, "Cancer"}, {time.July, 23, "Leo"},
		{time.August, 22, "Leo"}, {time.August, 23, "Virgo"},
		{time.September, 22, "Virgo"}, {time.September, 23, "Libra"},
		{time.October, 22, "Libra"}, {time.October, 23, "Scorpio"},
		{time.November, 21, "Scorpio"}, {time.November, 22, "Sagittarius"},
		{time.December, 21, "Sagittarius"}, {time.December, 22, "Capricorn"},
	}
	for _, tt := range tests {
		got := StarSign(time.Date(2000, tt.month, tt.day, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, tt.want, got, "%s %d", tt.month, tt.day)
	}
}

func TestCodecDerive(t *testing.T) {
	codec := NewFixed(fixedNow)

	d := codec.Derive("150688-XXXX")
	require.NotNil(t, d.Age)
	assert.Equal(t, 36, *d.Age)
	assert.Equal(t, "Gemini", d.StarSign)

	bad := codec.Derive("310488-1234")
	assert.Nil(t, bad.Age)
	assert.Empty(t, bad.StarSign)
	assert.Empty(t, codec.StarSignOf("nope"))
}
