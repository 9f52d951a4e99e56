// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package units maps raw captured unit text to a canonical
// unit-dimension representation with conversions to the dimension's
// standard unit.
package units

import (
	"fmt"
	"regexp"
)

// Dimension identifies a physical dimension and its standard unit.
type Dimension struct {
	// Name is the dimension name, e.g. "Temperature".
	Name string

	// Standard is the standard unit for the dimension.
	Standard *Unit
}

// Unit is a canonical unit within a dimension. Conversions map a value
// or error margin to and from the dimension's standard unit.
type Unit struct {
	// Name is the canonical unit name, e.g. "Celsius".
	Name string

	// Dimension is the unit's dimension.
	Dimension *Dimension

	toStandard      func(v float64) float64
	fromStandard    func(v float64) float64
	errToStandard   func(e float64) float64
	errFromStandard func(e float64) float64
}

// Canonical returns the serialized unit form, e.g. "Celsius^(1.0)".
func (u *Unit) Canonical() string {
	return fmt.Sprintf("%s^(1.0)", u.Name)
}

// ToStandard converts a value in this unit to the standard unit.
func (u *Unit) ToStandard(v float64) float64 { return u.toStandard(v) }

// FromStandard converts a value in the standard unit to this unit.
func (u *Unit) FromStandard(v float64) float64 { return u.fromStandard(v) }

// ErrorToStandard converts an error margin to the standard unit.
func (u *Unit) ErrorToStandard(e float64) float64 { return u.errToStandard(e) }

// ErrorFromStandard converts an error margin from the standard unit.
func (u *Unit) ErrorFromStandard(e float64) float64 { return u.errFromStandard(e) }

func identity(v float64) float64 { return v }

// Temperature is the temperature dimension. Kelvin is the standard unit.
var Temperature = &Dimension{Name: "Temperature"}

// Temperature units. Celsius and Fahrenheit convert through Kelvin;
// error margins are scale-only (no offset).
var (
	Kelvin = &Unit{
		Name:            "Kelvin",
		Dimension:       Temperature,
		toStandard:      identity,
		fromStandard:    identity,
		errToStandard:   identity,
		errFromStandard: identity,
	}

	Celsius = &Unit{
		Name:            "Celsius",
		Dimension:       Temperature,
		toStandard:      func(v float64) float64 { return v + 273.15 },
		fromStandard:    func(v float64) float64 { return v - 273.15 },
		errToStandard:   identity,
		errFromStandard: identity,
	}

	Fahrenheit = &Unit{
		Name:            "Fahrenheit",
		Dimension:       Temperature,
		toStandard:      func(v float64) float64 { return (v + 459.67) * 5.0 / 9.0 },
		fromStandard:    func(v float64) float64 { return v*9.0/5.0 - 459.67 },
		errToStandard:   func(e float64) float64 { return e * 5.0 / 9.0 },
		errFromStandard: func(e float64) float64 { return e * 9.0 / 5.0 },
	}
)

func init() {
	Temperature.Standard = Kelvin
}

// unitPattern pairs a recognizer with its unit. Patterns are tried in
// order and searched within the raw text, which often carries stray
// punctuation from the capturing pattern (e.g. "°C)").
type unitPattern struct {
	re   *regexp.Regexp
	unit *Unit
}

// Celsius comes last: its recognizer accepts a bare degree sign, which
// would otherwise claim °F spans.
var temperaturePatterns = []unitPattern{
	{regexp.MustCompile(`°?(([Kk]elvins?)|K)\.?`), Kelvin},
	{regexp.MustCompile(`°?([Ff]ahrenheit|F)\.?`), Fahrenheit},
	{regexp.MustCompile(`(°|[Cc]elsius|°?C)\.?`), Celsius},
}

// Parse resolves raw captured unit text to a canonical unit. The raw
// text is searched, not fully matched, so over-captured spans still
// resolve. Returns an error for unrecognized text; the caller decides
// whether that drops the record (strict) or leaves it unit-less.
func Parse(raw string) (*Unit, error) {
	for _, p := range temperaturePatterns {
		if p.re.MatchString(raw) {
			return p.unit, nil
		}
	}
	return nil, fmt.Errorf("unrecognized units %q", raw)
}
