package testutil

import "github.com/couchcryptid/neo-explorer-service/internal/domain"

// Fixture identities.
const (
	ErosID     int64 = 1001
	GanymedID  int64 = 1002
	ApophisID  int64 = 1003
	BennuID    int64 = 1004
	DidymosID  int64 = 1005
	ToutatisID int64 = 1006
	PhaethonID int64 = 1007
	ItokawaID  int64 = 1008
)

// Fixture totals.
const (
	TotalAsteroids      = 8
	HazardousAsteroids  = 4
	TotalApproaches     = 16
	HazardousApproaches = 10
)

// Asteroids returns the fixture asteroids. Phaethon has no approaches.
func Asteroids() []domain.Asteroid {
	return []domain.Asteroid{
		{ID: ErosID, Name: "Eros", AbsoluteMagnitudeH: 15.0, EstimatedDiameterMinKM: 1.2, EstimatedDiameterMaxKM: 2.7, IsPotentiallyHazardous: true},
		{ID: GanymedID, Name: "Ganymed", AbsoluteMagnitudeH: 14.0, EstimatedDiameterMinKM: 3.0, EstimatedDiameterMaxKM: 6.8},
		{ID: ApophisID, Name: "Apophis", AbsoluteMagnitudeH: 19.1, EstimatedDiameterMinKM: 0.3, EstimatedDiameterMaxKM: 0.7, IsPotentiallyHazardous: true},
		{ID: BennuID, Name: "Bennu", AbsoluteMagnitudeH: 20.2, EstimatedDiameterMinKM: 0.2, EstimatedDiameterMaxKM: 0.5, IsPotentiallyHazardous: true},
		{ID: DidymosID, Name: "Didymos", AbsoluteMagnitudeH: 18.0, EstimatedDiameterMinKM: 0.5, EstimatedDiameterMaxKM: 1.1},
		{ID: ToutatisID, Name: "Toutatis", AbsoluteMagnitudeH: 15.3, EstimatedDiameterMinKM: 2.0, EstimatedDiameterMaxKM: 4.5, IsPotentiallyHazardous: true},
		{ID: PhaethonID, Name: "Phaethon", AbsoluteMagnitudeH: 14.3, EstimatedDiameterMinKM: 4.0, EstimatedDiameterMaxKM: 9.0},
		{ID: ItokawaID, Name: "Itokawa", AbsoluteMagnitudeH: 19.2, EstimatedDiameterMinKM: 0.25, EstimatedDiameterMaxKM: 0.55},
	}
}

// Approaches returns the fixture close approaches with all distance units filled.
//
//	Eros      2 Earth, 100000 -> 40000 km (getting closer)
//	Ganymed   3 Earth, 5.0M -> 4.5M km (getting closer)
//	Apophis   4 Earth + 1 Mars, closest 38000 km, 300000 -> 600000 km (receding)
//	Bennu     2 Earth, 200000 -> 200000 km (flat)
//	Didymos   1 Earth
//	Toutatis  1 Earth, globally fastest at 80000 km/h
//	Itokawa   2 Earth, 1.5M -> 1.0M km (getting closer)
func Approaches() []domain.CloseApproach {
	out := []domain.CloseApproach{
		approach(ErosID, "2024-01-01", 60000, 100000, "Earth"),
		approach(ErosID, "2025-06-01", 45000, 40000, "Earth"),

		approach(GanymedID, "2024-02-10", 30000, 5000000, "Earth"),
		approach(GanymedID, "2024-08-15", 32000, 4000000, "Earth"),
		approach(GanymedID, "2025-02-10", 31000, 4500000, "Earth"),

		approach(ApophisID, "2024-03-05", 25000, 300000, "Earth"),
		approach(ApophisID, "2024-07-19", 27000, 250000, "Earth"),
		approach(ApophisID, "2025-01-11", 26000, 38000, "Earth"),
		approach(ApophisID, "2025-04-04", 15000, 9000000, "Mars"),
		approach(ApophisID, "2025-09-30", 28000, 600000, "Earth"),

		approach(BennuID, "2024-09-25", 70000, 200000, "Earth"),
		approach(BennuID, "2025-09-25", 72000, 200000, "Earth"),

		approach(DidymosID, "2024-10-04", 55000, 7000000, "Earth"),

		approach(ToutatisID, "2024-12-12", 80000, 180000, "Earth"),

		approach(ItokawaID, "2025-03-03", 20000, 1500000, "Earth"),
		approach(ItokawaID, "2025-03-20", 21000, 1000000, "Earth"),
	}
	for i := range out {
		if err := out[i].Normalize(); err != nil {
			panic(err)
		}
	}
	return out
}

func approach(ref int64, date string, velocity, km float64, body string) domain.CloseApproach {
	return domain.CloseApproach{
		NeoReferenceID:       ref,
		CloseApproachDate:    date,
		RelativeVelocityKMPH: velocity,
		MissDistanceKM:       km,
		OrbitingBody:         body,
	}
}
