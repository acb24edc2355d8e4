// Package model defines the core domain models used throughout the application.
package model

// Sector identifies a top-level business line an inbound request routes to.
type Sector string

// Business sectors. Declaration order is the tie-break order used by the
// classifier: when two sectors score equally, the earlier one here wins.
const (
	SectorMedical   Sector = "Medical"
	SectorTravel    Sector = "Travel"
	SectorFactory   Sector = "Factory"
	SectorMarketing Sector = "Marketing"
	SectorUnknown   Sector = "Unknown"
)

// AllSectors returns the routable sectors in their fixed declaration order.
// Unknown is excluded; it is an outcome, not a routing target.
func AllSectors() []Sector {
	return []Sector{SectorMedical, SectorTravel, SectorFactory, SectorMarketing}
}

// IsValid reports whether s is a known sector value.
func (s Sector) IsValid() bool {
	switch s {
	case SectorMedical, SectorTravel, SectorFactory, SectorMarketing, SectorUnknown:
		return true
	}
	return false
}

// Routable reports whether requests classified as s can be dispatched to a handler.
func (s Sector) Routable() bool {
	return s.IsValid() && s != SectorUnknown
}
