package llmtest

import (
	"encoding/json"
	"fmt"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

func ptr[T any](v T) *T {
	return &v
}

// WeatherRecord builds a plausible record for city that satisfies variant v.
func WeatherRecord(v schema.Variant, city string) *data.WeatherRecord {
	record := &data.WeatherRecord{
		Current: data.Current{
			City:        city,
			Date:        "Wed, 07 Aug",
			Temperature: 18.5,
			Condition:   "Clouds",
			Humidity:    72,
			WindSpeed:   4.2,
			FeelsLike:   17.9,
			Pressure:    1014,
			Visibility:  10,
			UVIndex:     3,
			Sunrise:     "5:32 AM",
			Sunset:      "8:41 PM",
		},
		AirQuality: data.AirQuality{AQI: 42, Category: "Good"},
	}
	if v.Extended {
		record.Current.WindDirection = ptr("SW")
		record.Current.AQI = ptr(42.0)
		record.Current.OutfitSuggestion = ptr("Light jacket")
		record.Current.Lat = ptr(51.5)
		record.Current.Lon = ptr(-0.12)
		record.AirQuality.PM25 = ptr(8.0)
		record.AirQuality.Ozone = ptr(61.0)
	}

	conditions := []string{"Clear", "Clouds", "Rain"}
	record.Forecast = make([]data.DailyForecast, v.ForecastDays)
	for i := range record.Forecast {
		day := data.DailyForecast{
			Day:         fmt.Sprintf("Aug %02d", 8+i),
			Temperature: 17 + float64(i),
			Condition:   conditions[i%len(conditions)],
		}
		if v.Extended {
			day.MinTemperature = ptr(11 + float64(i))
			day.ChanceOfRain = ptr(float64(10 * i))
		}
		if v.Icons {
			day.IconURL = ptr("https://openweathermap.org/img/wn/03d@2x.png")
		}
		record.Forecast[i] = day
	}

	record.Hourly = make([]data.HourlyForecast, v.HourlyCount)
	for i := range record.Hourly {
		hour := data.HourlyForecast{
			Time:        fmt.Sprintf("%dPM", i%12+1),
			Temperature: 16 + float64(i%5),
			Condition:   conditions[i%len(conditions)],
		}
		if v.Extended {
			hour.ApparentTemperature = ptr(15 + float64(i%5))
		}
		if v.Icons {
			hour.IconURL = ptr("https://openweathermap.org/img/wn/10n@2x.png")
		}
		record.Hourly[i] = hour
	}

	if v.Activities > 0 {
		record.ActivitySuggestions = make([]data.Activity, v.Activities)
		for i := range record.ActivitySuggestions {
			record.ActivitySuggestions[i] = data.Activity{
				Name:        fmt.Sprintf("Activity %d", i+1),
				Description: "Good weather for it.",
				IconKey:     "walk",
			}
		}
	}
	if v.Pollen {
		record.Pollen = &data.Pollen{
			Grass: data.LevelValue{Level: "Low", Value: 12},
			Weed:  data.LevelValue{Level: "Moderate", Value: 40},
			Tree:  data.LevelValue{Level: "High", Value: 95},
		}
	}
	if v.Pollutants {
		record.AirPollutants = &data.AirPollutants{
			Ozone: data.LevelValue{Level: "Low", Value: 61},
			CO:    data.LevelValue{Level: "Low", Value: 220},
			SO2:   data.LevelValue{Level: "Low", Value: 3},
		}
	}
	return record
}

// WeatherJSON is WeatherRecord serialized the way the backend would answer.
func WeatherJSON(v schema.Variant, city string) string {
	raw, err := json.Marshal(WeatherRecord(v, city))
	if err != nil {
		panic(err)
	}
	return string(raw)
}
