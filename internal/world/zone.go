package world

// ZoneType is the declared purpose of a zone.
type ZoneType string

const (
	ZoneFood          ZoneType = "food"
	ZoneKitchen       ZoneType = "kitchen"
	ZoneWater         ZoneType = "water"
	ZoneWell          ZoneType = "well"
	ZoneRest          ZoneType = "rest"
	ZoneShelter       ZoneType = "shelter"
	ZoneHygiene       ZoneType = "hygiene"
	ZoneBath          ZoneType = "bath"
	ZoneSocial        ZoneType = "social"
	ZoneMarket        ZoneType = "market"
	ZoneEntertainment ZoneType = "entertainment"
	ZoneTemple        ZoneType = "temple"
	ZoneSanctuary     ZoneType = "sanctuary"
	ZoneMedical       ZoneType = "medical"
	ZoneStorage       ZoneType = "storage"
	ZoneWorkshop      ZoneType = "workshop"
	ZoneWild          ZoneType = "wild"
)

// AllZoneTypes lists every zone type the generator may place.
var AllZoneTypes = []ZoneType{
	ZoneFood, ZoneKitchen, ZoneWater, ZoneWell, ZoneRest, ZoneShelter,
	ZoneHygiene, ZoneBath, ZoneSocial, ZoneMarket, ZoneEntertainment,
	ZoneTemple, ZoneSanctuary, ZoneMedical, ZoneStorage, ZoneWorkshop, ZoneWild,
}

// Zone is a named, typed rectangular region.
type Zone struct {
	ID                string   `json:"id"`
	Type              ZoneType `json:"type"`
	Bounds            Rect     `json:"bounds"`
	Attractiveness    float64  `json:"attractiveness"` // 0.0–1.0
	UnderConstruction bool     `json:"under_construction,omitempty"`
}

// Center returns the zone's midpoint, the default movement target.
func (z Zone) Center() Vec2 {
	return z.Bounds.Center()
}

// Contains reports whether p is inside the zone.
func (z Zone) Contains(p Vec2) bool {
	return z.Bounds.Contains(p)
}

// IsOneOf reports whether the zone's type is in types.
func (z Zone) IsOneOf(types ...ZoneType) bool {
	for _, t := range types {
		if z.Type == t {
			return true
		}
	}
	return false
}
