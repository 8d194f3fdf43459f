package activity

// MetersToKm converts meters to kilometers
func MetersToKm(m float64) float64 {
	return m / 1000
}

// SecondsToHours converts seconds to hours
func SecondsToHours(s float64) float64 {
	return s / 3600
}

// SpeedKmh returns the average speed in km/h, absent without distance or time
func SpeedKmh(meters, seconds float64) Optional[float64] {
	if meters <= 0 || seconds <= 0 {
		return None[float64]()
	}
	return Some(MetersToKm(meters) / SecondsToHours(seconds))
}

// PacePerKm returns seconds per kilometer
func PacePerKm(meters, seconds float64) Optional[float64] {
	if meters <= 0 || seconds <= 0 {
		return None[float64]()
	}
	return Some(seconds / MetersToKm(meters))
}

// PacePer100m returns seconds per 100 meters
func PacePer100m(meters, seconds float64) Optional[float64] {
	if meters <= 0 || seconds <= 0 {
		return None[float64]()
	}
	return Some(seconds / (meters / 100))
}
