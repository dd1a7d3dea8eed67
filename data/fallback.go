package data

import "github.com/stuartleeks/home-dash/weather-api/schema"

func ptr[T any](v T) *T {
	return &v
}

// Fallback builds the record returned when a query fails. It has exactly the shape a
// successful record of the same variant would have: numbers are 0, display strings
// are "N/A" and every condition is "Error". The city is kept so callers can say
// which query failed.
func Fallback(city string, v schema.Variant) *WeatherRecord {
	current := Current{
		City:      city,
		Date:      NotAvailable,
		Condition: ErrorCondition,
		Sunrise:   NotAvailable,
		Sunset:    NotAvailable,
	}
	air := AirQuality{Category: NotAvailable}
	if v.Extended {
		current.WindDirection = ptr(NotAvailable)
		current.AQI = ptr(0.0)
		current.OutfitSuggestion = ptr(NotAvailable)
		current.Lat = ptr(0.0)
		current.Lon = ptr(0.0)
		air.PM25 = ptr(0.0)
		air.Ozone = ptr(0.0)
	}

	forecast := make([]DailyForecast, v.ForecastDays)
	for i := range forecast {
		forecast[i] = DailyForecast{Day: NotAvailable, Condition: ErrorCondition}
		if v.Extended {
			forecast[i].MinTemperature = ptr(0.0)
			forecast[i].ChanceOfRain = ptr(0.0)
		}
		if v.Icons {
			forecast[i].IconURL = ptr(NotAvailable)
		}
	}

	hourly := make([]HourlyForecast, v.HourlyCount)
	for i := range hourly {
		hourly[i] = HourlyForecast{Time: NotAvailable, Condition: ErrorCondition}
		if v.Extended {
			hourly[i].ApparentTemperature = ptr(0.0)
		}
		if v.Icons {
			hourly[i].IconURL = ptr(NotAvailable)
		}
	}

	record := &WeatherRecord{
		Current:    current,
		Forecast:   forecast,
		Hourly:     hourly,
		AirQuality: air,
	}

	if v.Activities > 0 {
		record.ActivitySuggestions = make([]Activity, v.Activities)
		for i := range record.ActivitySuggestions {
			record.ActivitySuggestions[i] = Activity{Name: NotAvailable, Description: NotAvailable, IconKey: NotAvailable}
		}
	}
	na := LevelValue{Level: NotAvailable}
	if v.Pollen {
		record.Pollen = &Pollen{Grass: na, Weed: na, Tree: na}
	}
	if v.Pollutants {
		record.AirPollutants = &AirPollutants{Ozone: na, CO: na, SO2: na}
	}
	return record
}
