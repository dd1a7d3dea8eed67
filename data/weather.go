package data

// ErrorCondition marks a fallback record. Nothing else in a record carrying it is meaningful.
const ErrorCondition = "Error"

// NotAvailable is the sentinel for display strings in a fallback record.
const NotAvailable = "N/A"

type Current struct {
	City        string  `json:"city"`
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"` // Celsius
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidity"`   // percent
	WindSpeed   float64 `json:"windSpeed"`  // m/s
	FeelsLike   float64 `json:"feelsLike"`  // Celsius
	Pressure    float64 `json:"pressure"`   // hPa
	Visibility  float64 `json:"visibility"` // km
	UVIndex     float64 `json:"uvIndex"`
	Sunrise     string  `json:"sunrise"`
	Sunset      string  `json:"sunset"`

	WindDirection    *string  `json:"windDirection,omitempty"`
	AQI              *float64 `json:"aqi,omitempty"`
	OutfitSuggestion *string  `json:"outfitSuggestion,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lon              *float64 `json:"lon,omitempty"`
}

type DailyForecast struct {
	Day         string  `json:"day"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`

	MinTemperature *float64 `json:"minTemperature,omitempty"`
	ChanceOfRain   *float64 `json:"chanceOfRain,omitempty"` // percent
	IconURL        *string  `json:"iconUrl,omitempty"`
}

type HourlyForecast struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`

	ApparentTemperature *float64 `json:"apparentTemperature,omitempty"`
	IconURL             *string  `json:"iconUrl,omitempty"`
}

type AirQuality struct {
	AQI      float64 `json:"aqi"`
	Category string  `json:"category"`

	PM25  *float64 `json:"pm25,omitempty"`  // µg/m³
	Ozone *float64 `json:"ozone,omitempty"` // µg/m³
}

type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconKey     string `json:"iconKey"`
}

type LevelValue struct {
	Level string  `json:"level"`
	Value float64 `json:"value"`
}

type Pollen struct {
	Grass LevelValue `json:"grass"`
	Weed  LevelValue `json:"weed"`
	Tree  LevelValue `json:"tree"`
}

type AirPollutants struct {
	Ozone LevelValue `json:"ozone"`
	CO    LevelValue `json:"co"`
	SO2   LevelValue `json:"so2"`
}

// WeatherRecord is the result of one weather query. It is built fresh per query
// and replaced wholesale by the next one.
type WeatherRecord struct {
	Current    Current          `json:"current"`
	Forecast   []DailyForecast  `json:"forecast"`
	Hourly     []HourlyForecast `json:"hourly"`
	AirQuality AirQuality       `json:"airQuality"`

	ActivitySuggestions []Activity     `json:"activitySuggestions,omitempty"`
	Pollen              *Pollen        `json:"pollen,omitempty"`
	AirPollutants       *AirPollutants `json:"airPollutants,omitempty"`
}

// IsError reports whether the record is a fallback.
func (r *WeatherRecord) IsError() bool {
	return r == nil || r.Current.Condition == ErrorCondition
}
