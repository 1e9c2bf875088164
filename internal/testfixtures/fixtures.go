// Package testfixtures holds deterministic clocks, identifiers and storage
// backends shared by the package tests.
package testfixtures

import (
	"time"

	"github.com/example/easyride/internal/geo"
)

var referenceTime = time.Date(2026, time.June, 2, 10, 30, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime shifted by days, formatted the way
// date inputs submit it.
func ReferenceDate(days int) string {
	return referenceTime.AddDate(0, 0, days).Format("2006-01-02")
}

// Demo credentials accepted by the session store.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password"
)

// Positions near the main store in Nador.
var (
	MainStorePosition = geo.Point{Lat: 34.6819, Lon: -1.9116}
	// NadorPort is roughly 4.2 km north east of the main store.
	NadorPort = geo.Point{Lat: 34.7140, Lon: -1.8880}
)
