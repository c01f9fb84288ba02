// Package weather rolls the daily weather and maps it to simulation
// modifiers: how fast needs decay outdoors, how slowly agents travel and how
// much the land regrows.
package weather

import (
	"fmt"
	"time"

	"github.com/talgya/needsim/internal/entropy"
)

// Season is the quarter of the year.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = [...]string{"spring", "summer", "autumn", "winter"}

func (s Season) String() string {
	if int(s) < len(seasonNames) {
		return seasonNames[s]
	}
	return fmt.Sprintf("season(%d)", s)
}

// SeasonOf maps a date to its northern-hemisphere season.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// Conditions is one day's weather.
type Conditions struct {
	Season      Season  `json:"season"`
	Temp        float64 `json:"temp"`       // Celsius
	WindSpeed   float64 `json:"wind_speed"` // m/s
	IsStorm     bool    `json:"is_storm"`
	IsSnow      bool    `json:"is_snow"`
	IsRain      bool    `json:"is_rain"`
	Description string  `json:"description"`
}

// Seasonal temperature mean and spread.
var climate = map[Season]struct{ mean, spread float64 }{
	Spring: {14, 8},
	Summer: {27, 9},
	Autumn: {12, 8},
	Winter: {-1, 7},
}

// Roll draws a day's weather for season from src.
func Roll(season Season, src entropy.Source) Conditions {
	cl := climate[season]
	c := Conditions{
		Season:    season,
		Temp:      cl.mean + (2*src.Float64()-1)*cl.spread,
		WindSpeed: 20 * src.Float64() * src.Float64(),
	}
	precip := src.Float64()
	switch {
	case precip < 0.25 && c.Temp < 1:
		c.IsSnow = true
	case precip < 0.3:
		c.IsRain = true
	}
	c.IsStorm = c.WindSpeed > 15
	c.Description = describe(c)
	return c
}

func describe(c Conditions) string {
	switch {
	case c.IsStorm:
		return "storm"
	case c.IsSnow:
		return "snow"
	case c.IsRain:
		return "rain"
	case c.Temp > 30:
		return "heat"
	case c.Temp < 0:
		return "frost"
	}
	return "fair " + c.Season.String() + " weather"
}

// Modifiers are what the simulation reads from the weather.
type Modifiers struct {
	DecayMod      float64 // multiplier on outdoor need decay
	TravelPenalty float64 // divides walking speed
	Regrowth      float64 // multiplier on hourly regrowth
}

// Neutral leaves the simulation unaffected.
var Neutral = Modifiers{DecayMod: 1, TravelPenalty: 1, Regrowth: 1}

// MapToSim converts conditions to modifiers.
func MapToSim(c Conditions) Modifiers {
	m := Neutral

	// Heat and cold both wear agents down.
	switch {
	case c.Temp > 30:
		m.DecayMod = 1.2
	case c.Temp > 25:
		m.DecayMod = 1.1
	case c.Temp < 0:
		m.DecayMod = 1.15
	}

	switch {
	case c.IsStorm:
		m.TravelPenalty = 2.0
		m.DecayMod += 0.1
	case c.IsSnow:
		m.TravelPenalty = 1.5
	case c.IsRain:
		m.TravelPenalty = 1.2
	}

	switch c.Season {
	case Spring:
		m.Regrowth = 1.5
	case Summer:
		m.Regrowth = 1.2
	case Winter:
		m.Regrowth = 0.5
	}
	if c.IsRain {
		m.Regrowth += 0.25
	}
	return m
}
