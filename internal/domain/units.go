package domain

const (
	// LunarDistanceKM is one lunar distance (LD), the mean Earth-Moon distance.
	LunarDistanceKM = 384400.0
	// AstronomicalUnitKM is one astronomical unit (AU), the mean Earth-Sun distance.
	AstronomicalUnitKM = 149597870.7
)

// KMToLunar converts kilometers to lunar distances.
func KMToLunar(km float64) float64 { return km / LunarDistanceKM }

// KMToAU converts kilometers to astronomical units.
func KMToAU(km float64) float64 { return km / AstronomicalUnitKM }

// LunarToKM converts lunar distances to kilometers.
func LunarToKM(ld float64) float64 { return ld * LunarDistanceKM }

// AUToKM converts astronomical units to kilometers.
func AUToKM(au float64) float64 { return au * AstronomicalUnitKM }
