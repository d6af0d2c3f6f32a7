// Package progress reconciles coarse duty-log telemetry against a planned
// route. Everything here is pure: the boundary layer fetches the snapshot,
// this package computes, nothing is cached between calls.
package progress

import (
	"tripdash/internal/geo"
	"tripdash/internal/model"
)

// Fuel-range policy: drivers must refuel before 1000 miles, and the
// dashboard starts nagging at 900.
const (
	fuelApproachMiles = 900.0
	fuelRefuelMiles   = 1000.0
)

// offRouteEpsilon is the squared planar tolerance below which the last
// telemetry fix counts as "on" its matched vertex.
const offRouteEpsilon = 1e-8

// Reconcile derives how far along the planned path the telemetry has
// reached. The traveled prefix runs to the furthest matched vertex; the
// match assumes roughly monotonic travel along the plan, so a looping or
// self-intersecting route can over-credit progress. Known limitation,
// accepted for coarse stop-level telemetry.
//
// drivenMiles is independent of the plan: it is the cumulative haversine
// distance over [start?, points...], i.e. actual movement between fixes.
// start is the trip's declared start location and may be nil.
func Reconcile(planned []model.Coordinate, points []model.Coordinate, start *model.Coordinate) model.ProgressResult {
	res := model.ProgressResult{DrivenPath: []model.Coordinate{}}

	if len(planned) >= 2 && len(points) > 0 {
		furthest := -1
		for _, p := range points {
			if idx := geo.NearestIndex(planned, p); idx > furthest {
				furthest = idx
			}
		}
		if furthest >= 0 {
			res.DrivenPath = append(res.DrivenPath, planned[:furthest+1]...)
			last := points[len(points)-1]
			if geo.SquaredPlanarDistance(last, planned[furthest]) > offRouteEpsilon {
				res.DrivenPath = append(res.DrivenPath, last)
			}
		}
	}

	track := points
	if start != nil {
		track = append([]model.Coordinate{*start}, points...)
	}
	res.DrivenMiles = geo.PathMiles(track)
	res.FuelStatus = FuelStatusFor(res.DrivenMiles)
	return res
}

// FuelStatusFor maps cumulative driven miles to the tiered fuel warning.
func FuelStatusFor(miles float64) model.FuelStatus {
	switch {
	case miles >= fuelRefuelMiles:
		return model.FuelRefuelNow
	case miles >= fuelApproachMiles:
		return model.FuelApproaching
	default:
		return model.FuelNominal
	}
}
