package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/stuartleeks/home-dash/weather-api/data"
)

const (
	cardWidth      = 800
	cardHeight     = 480
	maxCardColumns = 5
)

var loadFonts = sync.OnceValues(func() (map[bool]*truetype.Font, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return map[bool]*truetype.Font{false: regular, true: bold}, nil
})

func fontFace(size float64, bold bool) (font.Face, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(fonts[bold], &truetype.Options{Size: size}), nil
}

func setFont(dc *gg.Context, size float64, bold bool) error {
	face, err := fontFace(size, bold)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	return nil
}

// drawWeatherCard renders a record as an 800x480 card, scaled to width when it differs.
func drawWeatherCard(record *data.WeatherRecord, summary string, width int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))

	dc := gg.NewContextForRGBA(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, cardWidth, cardHeight)
	dc.Fill()

	if err := drawCardHeading(dc, record.Current.City, record.Current.Date); err != nil {
		return nil, err
	}

	if record.IsError() {
		if err := drawMessage(dc, "Weather details are unavailable right now.", 220); err != nil {
			return nil, err
		}
		return scaleCard(dimmed(img, 0.8), width), nil
	}

	if err := drawCurrent(dc, record.Current, 60, 30); err != nil {
		return nil, err
	}
	if err := drawAirQuality(dc, record.AirQuality, 80, 560); err != nil {
		return nil, err
	}
	if err := drawForecast(dc, record.Forecast, 250); err != nil {
		return nil, err
	}
	if err := drawMessage(dc, summary, 400); err != nil {
		return nil, err
	}
	return scaleCard(img, width), nil
}

func drawCardHeading(dc *gg.Context, city string, dateText string) error {
	dc.SetHexColor("#000000")

	if err := setFont(dc, 25, true); err != nil {
		return err
	}
	drawStringLeft(dc, city, 20, 10)

	if err := setFont(dc, 20, false); err != nil {
		return err
	}
	w, h := dc.MeasureString(dateText)
	dc.DrawString(dateText, float64(dc.Width())-w-20, 12+h)
	return nil
}

func drawCurrent(dc *gg.Context, current data.Current, top float64, left float64) error {
	dc.SetHexColor("#000000")

	drawConditionIcon(dc, current.Condition, left+60, top+70, 55)

	if err := setFont(dc, 60, true); err != nil {
		return err
	}
	drawStringLeft(dc, fmt.Sprintf("%0.0f°C", current.Temperature), left+140, top+10)

	if err := setFont(dc, 20, false); err != nil {
		return err
	}
	drawStringLeft(dc, current.Condition, left+140, top+90)
	drawStringLeft(dc, fmt.Sprintf("Feels like %0.0f°C, %0.0f%% humidity", current.FeelsLike, current.Humidity), left+140, top+120)

	if err := setFont(dc, 15, false); err != nil {
		return err
	}
	wind := fmt.Sprintf("Wind %0.1f m/s", current.WindSpeed)
	if current.WindDirection != nil {
		wind += " " + *current.WindDirection
	}
	drawStringLeft(dc, fmt.Sprintf("%s   UV %0.0f   Sunrise %s   Sunset %s", wind, current.UVIndex, current.Sunrise, current.Sunset), left, top+160)
	return nil
}

func drawAirQuality(dc *gg.Context, air data.AirQuality, top float64, left float64) error {
	band := data.AQIBandFor(air.AQI)

	dc.SetHexColor(band.Color)
	dc.DrawRoundedRectangle(left, top, 210, 80, 10)
	dc.Fill()

	dc.SetHexColor("#000000")
	if err := setFont(dc, 17.5, true); err != nil {
		return err
	}
	drawStringCentered(dc, fmt.Sprintf("AQI %0.0f", air.AQI), left+105, top+12)
	if err := setFont(dc, 14, false); err != nil {
		return err
	}
	drawStringCentered(dc, band.Category, left+105, top+45)
	return nil
}

func drawForecast(dc *gg.Context, forecast []data.DailyForecast, top float64) error {
	if len(forecast) > maxCardColumns {
		forecast = forecast[:maxCardColumns]
	}
	if len(forecast) == 0 {
		return nil
	}

	columnWidth := float64(dc.Width()-40) / float64(len(forecast))
	for i, day := range forecast {
		centre := 20 + columnWidth*float64(i) + columnWidth/2

		dc.SetHexColor("#000000")
		if err := setFont(dc, 17, true); err != nil {
			return err
		}
		drawStringCentered(dc, day.Day, centre, top)

		drawConditionIcon(dc, day.Condition, centre, top+65, 22)

		if err := setFont(dc, 17.5, false); err != nil {
			return err
		}
		temperature := fmt.Sprintf("%0.0f°C", day.Temperature)
		if day.MinTemperature != nil {
			temperature = fmt.Sprintf("%0.0f° / %0.0f°", day.Temperature, *day.MinTemperature)
		}
		drawStringCentered(dc, temperature, centre, top+95)

		if err := setFont(dc, 14, false); err != nil {
			return err
		}
		drawStringCentered(dc, day.Condition, centre, top+120)
	}
	return nil
}

// drawMessage shrinks the font until the text fits in three lines.
func drawMessage(dc *gg.Context, message string, top float64) error {
	if message == "" {
		return nil
	}

	dc.SetHexColor("#000000")
	maxWidth := float64(dc.Width()) - 40

	messageFontSize := 20
	for messageFontSize > 10 {
		if err := setFont(dc, float64(messageFontSize), false); err != nil {
			return err
		}
		if len(dc.WordWrap(message, maxWidth)) <= 3 {
			break
		}
		messageFontSize -= 1
	}
	dc.DrawStringWrapped(message, float64(dc.Width())/2, top, 0.5, 0, maxWidth, 1.3, gg.AlignCenter)
	return nil
}

func drawConditionIcon(dc *gg.Context, condition string, x, y, size float64) {
	switch c := strings.ToLower(condition); {
	case strings.Contains(c, "clear") || strings.Contains(c, "sun"):
		dc.SetHexColor("#facc15")
		dc.DrawCircle(x, y, size*0.5)
		dc.Fill()
	case strings.Contains(c, "rain") || strings.Contains(c, "drizzle") || strings.Contains(c, "storm"):
		drawCloud(dc, x, y-size*0.2, size)
		dc.SetHexColor("#3b82f6")
		dc.SetLineWidth(2)
		for i := -1.0; i <= 1; i++ {
			dc.DrawLine(x+i*size*0.3, y+size*0.25, x+i*size*0.3-size*0.1, y+size*0.55)
		}
		dc.Stroke()
	case strings.Contains(c, "snow"):
		drawCloud(dc, x, y-size*0.2, size)
		dc.SetHexColor("#60a5fa")
		for i := -1.0; i <= 1; i++ {
			dc.DrawCircle(x+i*size*0.3, y+size*0.45, size*0.07)
		}
		dc.Fill()
	default:
		drawCloud(dc, x, y, size)
	}
	dc.SetHexColor("#000000")
}

func drawCloud(dc *gg.Context, x, y, size float64) {
	dc.SetHexColor("#9ca3af")
	dc.DrawEllipse(x, y, size*0.6, size*0.3)
	dc.DrawCircle(x-size*0.2, y-size*0.2, size*0.25)
	dc.DrawCircle(x+size*0.15, y-size*0.25, size*0.3)
	dc.Fill()
}

func drawStringCentered(dc *gg.Context, text string, x, y float64) {
	w, h := dc.MeasureString(text)
	dc.DrawString(text, x-w/2, y+h)
}
func drawStringLeft(dc *gg.Context, text string, x, y float64) {
	_, h := dc.MeasureString(text)
	dc.DrawString(text, x, y+h)
}

func scaleCard(src *image.RGBA, width int) image.Image {
	if width <= 0 || width == src.Bounds().Dx() {
		return src
	}
	height := src.Bounds().Dy() * width / src.Bounds().Dx()
	destImage := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(destImage, destImage.Rect, src, src.Bounds(), draw.Over, nil)
	return destImage
}

func dimmed(img *image.RGBA, factor float64) *image.RGBA {
	bounds := img.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			c := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(c.R) * factor),
				G: uint8(float64(c.G) * factor),
				B: uint8(float64(c.B) * factor),
				A: c.A,
			})
		}
	}
	return img
}
