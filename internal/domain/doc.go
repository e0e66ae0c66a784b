// Package domain models near-Earth asteroid data as published by the NASA
// NeoWs (Near Earth Object Web Service) feed.
//
// # Data Source
//
// The dashboard reads a fixed, pre-loaded dataset held in two relational
// tables. The dashboard never writes to them; cmd/seed loads them from CSV.
//
//	asteroids       one row per distinct object, keyed by id
//	close_approach  one row per recorded passage, joined on neo_reference_id = asteroids.id
//
// # Units
//
// Every close approach carries its miss distance in three units that must stay
// consistent with each other:
//
//	miss_distance_km     kilometers
//	miss_distance_lunar  kilometers / 384,400 (LD, mean Earth-Moon distance)
//	astronomical         kilometers / 149,597,870.7 (AU, mean Earth-Sun distance)
//
// Velocities are relative to the orbiting body in km/h. Absolute magnitude (H)
// is inverted: a lower value means a brighter object.
//
// # Hazard Classification
//
// is_potentially_hazardous_asteroid is taken verbatim from the dataset and is
// never computed here. Every query that exposes a hazard selector uses the same
// [HazardFilter] value for its SQL predicate and for the palette of its
// presentation, so the two cannot drift apart.
//
// # Fact of the Day
//
// The home screen optionally shows NASA's Astronomy Picture of the Day. The
// lookup is best effort: [LookupFact] always returns a usable payload and
// falls back to a fixed placeholder on any failure.
package domain
