package cpr

import "time"

// Codec binds the parsing rules to a clock. The zero value uses time.Now.
type Codec struct {
	Now func() time.Time
}

// Derived holds the fields computed from an identifier. Age is nil and
// StarSign empty when the identifier does not parse.
type Derived struct {
	Age      *int
	StarSign string
}

func New() *Codec {
	return &Codec{Now: time.Now}
}

// NewFixed returns a codec frozen at t; used by tests and the seeder.
func NewFixed(t time.Time) *Codec {
	return &Codec{Now: func() time.Time { return t }}
}

// now is always UTC so the century pivot and the age share one calendar.
func (c *Codec) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

func (c *Codec) ParseBirthDate(id string) (time.Time, error) {
	return ParseBirthDate(id, c.now())
}

func (c *Codec) Age(id string) (int, bool) {
	return Age(id, c.now())
}

// StarSignOf returns the sign for id, or "" if it does not parse.
func (c *Codec) StarSignOf(id string) string {
	birth, err := c.ParseBirthDate(id)
	if err != nil {
		return ""
	}
	return StarSign(birth)
}

// Derive computes age and star sign in one parse.
func (c *Codec) Derive(id string) Derived {
	now := c.now()
	birth, err := ParseBirthDate(id, now)
	if err != nil {
		return Derived{}
	}
	age := ageOn(birth, now)
	return Derived{Age: &age, StarSign: StarSign(birth)}
}
