package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

const systemPrompt = `You are a weather API. You answer with a single JSON document and nothing else.
Use realistic weather conditions and temperatures for the requested city and season.`

func instruction(city string, v schema.Variant, contract *schema.Node, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Given a city, provide the current weather, a %d-day forecast and a %d-hour forecast.\n\n",
		v.ForecastDays, v.HourlyCount)
	fmt.Fprintf(&sb, "City: %s\n", city)
	fmt.Fprintf(&sb, "Today's date: %s\n\n", now.Format("Mon, 02 Jan"))

	sb.WriteString("Units: temperatures in Celsius, wind speed in m/s, pressure in hPa, visibility in kilometers.\n")
	sb.WriteString("Format the current date like 'Wed, 07 Aug' and give sunrise and sunset for this city and date, like '6:30 AM'.\n")
	fmt.Fprintf(&sb, "The forecast must contain exactly %d entries, one per day starting tomorrow, with days formatted like 'Aug 08'.\n", v.ForecastDays)
	fmt.Fprintf(&sb, "The hourly forecast must contain exactly %d entries, one per hour starting with the next hour, formatted like '3PM'.\n", v.HourlyCount)
	if v.Icons {
		fmt.Fprintf(&sb, "Icon URLs must follow %s using the OpenWeatherMap icon code that matches the condition.\n", schema.IconURLPattern)
	}
	if v.Activities > 0 {
		fmt.Fprintf(&sb, "Suggest exactly %d activities that suit today's weather.\n", v.Activities)
	}

	sb.WriteString("\nRespond with JSON containing these fields:\n")
	sb.WriteString(contract.Describe())
	return sb.String()
}

const summarySystemPrompt = "You are a helpful weather assistant."

func summaryPrompt(record *data.WeatherRecord) string {
	var sb strings.Builder
	sb.WriteString("Given the following weather data, provide a short, conversational summary (2-3 sentences) of the overall weather conditions. ")
	sb.WriteString("Focus on what a person would need to know for their day.\n\n")
	sb.WriteString("For example: \"It will be a pleasant and sunny afternoon, perfect for a walk. However, grab a jacket if you're planning to be out late as it will get chilly after sunset.\"\n\n")

	sb.WriteString("Weather Data:\n")
	fmt.Fprintf(&sb, "City: %s\n", record.Current.City)
	fmt.Fprintf(&sb, "Current Temperature: %g°C\n", record.Current.Temperature)
	fmt.Fprintf(&sb, "Current Condition: %s\n", record.Current.Condition)
	fmt.Fprintf(&sb, "Feels Like: %g°C\n", record.Current.FeelsLike)
	fmt.Fprintf(&sb, "%d-Day Forecast:\n", len(record.Forecast))
	for _, day := range record.Forecast {
		fmt.Fprintf(&sb, "- %s: %g°C, %s\n", day.Day, day.Temperature, day.Condition)
	}
	return sb.String()
}

func imagePrompt(city, condition string) string {
	return fmt.Sprintf("A wide, photorealistic view of %s under %s weather, suitable as a dashboard background. No text.",
		city, strings.ToLower(condition))
}
