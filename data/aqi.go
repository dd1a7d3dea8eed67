package data

type AQIBand struct {
	Category string `json:"category"`
	Color    string `json:"color"` // hex
}

var aqiBands = []struct {
	max  float64
	band AQIBand
}{
	{50, AQIBand{"Good", "#4ade80"}},
	{100, AQIBand{"Moderate", "#facc15"}},
	{150, AQIBand{"Unhealthy for Sensitive Groups", "#fb923c"}},
	{200, AQIBand{"Unhealthy", "#f87171"}},
	{300, AQIBand{"Very Unhealthy", "#c084fc"}},
}

// AQIBandFor maps an AQI value onto the US EPA bands.
func AQIBandFor(aqi float64) AQIBand {
	for _, b := range aqiBands {
		if aqi <= b.max {
			return b.band
		}
	}
	return AQIBand{"Hazardous", "#f43f5e"}
}
