package schema

import (
	"fmt"
	"strings"
)

// Variant fixes the shape of the weather contract for one deployment.
type Variant struct {
	Name         string `yaml:"name" json:"name"`
	ForecastDays int    `yaml:"forecastDays" json:"forecastDays"`
	HourlyCount  int    `yaml:"hourlyCount" json:"hourlyCount"`
	Icons        bool   `yaml:"icons" json:"icons"`
	Extended     bool   `yaml:"extended" json:"extended"`
	Activities   int    `yaml:"activities" json:"activities"`
	Pollen       bool   `yaml:"pollen" json:"pollen"`
	Pollutants   bool   `yaml:"pollutants" json:"pollutants"`
}

var (
	// Classic is the 5-day / 7-hour contract the dashboard shipped with.
	Classic = Variant{Name: "classic", ForecastDays: 5, HourlyCount: 7}
	Compact = Variant{Name: "compact", ForecastDays: 3, HourlyCount: 7}
	Rich    = Variant{
		Name:         "rich",
		ForecastDays: 7,
		HourlyCount:  24,
		Icons:        true,
		Extended:     true,
		Activities:   3,
		Pollen:       true,
		Pollutants:   true,
	}
)

// IconURLPattern is the icon convention the backend is asked to follow.
const IconURLPattern = "https://openweathermap.org/img/wn/{code}@2x.png"

// VariantByName returns one of the named variants.
func VariantByName(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Classic.Name:
		return Classic, nil
	case Compact.Name:
		return Compact, nil
	case Rich.Name:
		return Rich, nil
	}
	return Variant{}, fmt.Errorf("unknown weather schema variant %q", name)
}

func (v Variant) Validate() error {
	switch v.ForecastDays {
	case 3, 5, 7:
	default:
		return fmt.Errorf("forecast length must be 3, 5 or 7 days, got %d", v.ForecastDays)
	}
	switch v.HourlyCount {
	case 7, 24:
	default:
		return fmt.Errorf("hourly length must be 7 or 24 entries, got %d", v.HourlyCount)
	}
	if v.Activities < 0 {
		return fmt.Errorf("activity count must not be negative, got %d", v.Activities)
	}
	return nil
}

func levelValue(what string) *Node {
	return Object(what,
		Field("level", String("Descriptive level, e.g. Low, Moderate, High.")),
		Field("value", Number("Measured value.")),
	)
}

// Weather builds the weather contract for a variant.
func Weather(v Variant) *Node {
	current := []Property{
		Field("city", String("The city name.")),
		Field("date", String("Today's date, formatted like 'Wed, 07 Aug'.")),
		Field("temperature", Number("Temperature in Celsius.")),
		Field("condition", String("e.g., Clear, Clouds, Rain, Snow.")),
		Field("humidity", Number("Humidity in percent (0-100).")),
		Field("windSpeed", Number("Wind speed in m/s.")),
		Field("feelsLike", Number("\"Feels like\" temperature in Celsius.")),
		Field("pressure", Number("Atmospheric pressure in hPa.")),
		Field("visibility", Number("Visibility in kilometers.")),
		Field("uvIndex", Number("UV index.")),
		Field("sunrise", String("Sunrise time, e.g., '6:30 AM'.")),
		Field("sunset", String("Sunset time, e.g., '7:45 PM'.")),
	}
	day := []Property{
		Field("day", String("Day of the week and date, e.g., 'Aug 08'.")),
		Field("temperature", Number("Predicted temperature in Celsius.")),
		Field("condition", String("Predicted condition (e.g., Clear, Clouds, Rain, Snow).")),
	}
	hour := []Property{
		Field("time", String("Hour of the day, e.g., '3PM', '4PM'.")),
		Field("temperature", Number("Predicted temperature in Celsius.")),
		Field("condition", String("Predicted condition.")),
	}
	air := []Property{
		Field("aqi", Number("Air Quality Index value.")),
		Field("category", String("e.g., Good, Moderate, Unhealthy.")),
	}

	if v.Extended {
		current = append(current,
			Field("windDirection", String("Compass wind direction, e.g., 'NW'.")),
			Field("aqi", Number("Air Quality Index value.")),
			Field("outfitSuggestion", String("A short clothing suggestion for the conditions.")),
			Field("lat", Number("Latitude of the city in degrees.")),
			Field("lon", Number("Longitude of the city in degrees.")),
		)
		day = append(day,
			Field("minTemperature", Number("Predicted minimum temperature in Celsius.")),
			Field("chanceOfRain", Number("Chance of rain in percent (0-100).")),
		)
		hour = append(hour, Field("apparentTemperature", Number("Apparent temperature in Celsius.")))
		air = append(air,
			Field("pm25", Number("PM2.5 concentration in µg/m³.")),
			Field("ozone", Number("Ozone concentration in µg/m³.")),
		)
	}
	if v.Icons {
		icon := Field("iconUrl", String("Icon URL following "+IconURLPattern+" with an OpenWeatherMap icon code such as 01d or 10n."))
		day = append(day, icon)
		hour = append(hour, icon)
	}

	root := []Property{
		Field("current", Object("Current conditions.", current...)),
		Field("forecast", Array(Object("", day...), v.ForecastDays,
			fmt.Sprintf("A %d-day weather forecast starting tomorrow.", v.ForecastDays))),
		Field("hourly", Array(Object("", hour...), v.HourlyCount,
			fmt.Sprintf("A %d-hour forecast starting with the next hour.", v.HourlyCount))),
		Field("airQuality", Object("Current air quality.", air...)),
	}

	if v.Activities > 0 {
		root = append(root, Field("activitySuggestions", Array(Object("",
			Field("name", String("Short activity name.")),
			Field("description", String("One sentence on why it suits the weather.")),
			Field("iconKey", String("One of: walk, bike, run, museum, cafe, beach, ski, movie, picnic, swim.")),
		), v.Activities, fmt.Sprintf("Exactly %d activities suited to today's weather.", v.Activities))))
	}
	if v.Pollen {
		root = append(root, Field("pollen", Object("Pollen levels.",
			Field("grass", levelValue("Grass pollen.")),
			Field("weed", levelValue("Weed pollen.")),
			Field("tree", levelValue("Tree pollen.")),
		)))
	}
	if v.Pollutants {
		root = append(root, Field("airPollutants", Object("Individual air pollutants.",
			Field("ozone", levelValue("Ozone (O3).")),
			Field("co", levelValue("Carbon monoxide (CO).")),
			Field("so2", levelValue("Sulphur dioxide (SO2).")),
		)))
	}

	return Object("Weather report for a single city.", root...)
}

// Suggestions is the contract for code-completion suggestions.
func Suggestions() *Node {
	return Object("Code completion suggestions.",
		Field("suggestions", Array(String("A code snippet to insert at the cursor."), 0,
			"An array of code completion suggestions.")),
	)
}
