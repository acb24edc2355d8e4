package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorValidity(t *testing.T) {
	for _, sector := range AllSectors() {
		assert.True(t, sector.IsValid())
		assert.True(t, sector.Routable())
	}

	assert.True(t, SectorUnknown.IsValid())
	assert.False(t, SectorUnknown.Routable())
	assert.False(t, Sector("Astrology").IsValid())
	assert.False(t, Sector("").Routable())
}

func TestAllSectorsOrderStable(t *testing.T) {
	// Tie-breaking depends on this exact order.
	want := []Sector{SectorMedical, SectorTravel, SectorFactory, SectorMarketing}
	assert.Equal(t, want, AllSectors())
}
