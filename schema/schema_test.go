package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func sampleDoc(t *testing.T, v Variant, mutate func(doc map[string]any)) []byte {
	t.Helper()
	doc := buildSample(Weather(v))
	if mutate != nil {
		mutate(doc.(map[string]any))
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

// buildSample produces a document satisfying the node.
func buildSample(n *Node) any {
	switch n.Kind {
	case KindObject:
		obj := map[string]any{}
		for _, p := range n.Properties {
			obj[p.Name] = buildSample(p.Node)
		}
		return obj
	case KindArray:
		count := n.Length
		if count == 0 {
			count = 2
		}
		arr := make([]any, count)
		for i := range arr {
			arr[i] = buildSample(n.Items)
		}
		return arr
	case KindString:
		return "Clear"
	case KindNumber:
		return 12.5
	case KindInteger:
		return 3
	case KindBoolean:
		return true
	}
	return nil
}

func TestValidateAcceptsEveryVariant(t *testing.T) {
	for _, v := range []Variant{Classic, Compact, Rich} {
		t.Run(v.Name, func(t *testing.T) {
			require.NoError(t, v.Validate())
			assert.NoError(t, Weather(v).Validate(sampleDoc(t, v, nil)))
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		path   string
	}{
		{
			name:   "missing required field",
			mutate: func(doc map[string]any) { delete(doc["current"].(map[string]any), "humidity") },
			path:   "$.current.humidity",
		},
		{
			name:   "null required field",
			mutate: func(doc map[string]any) { doc["airQuality"].(map[string]any)["aqi"] = nil },
			path:   "$.airQuality.aqi",
		},
		{
			name:   "wrong type",
			mutate: func(doc map[string]any) { doc["current"].(map[string]any)["temperature"] = "warm" },
			path:   "$.current.temperature",
		},
		{
			name: "short forecast",
			mutate: func(doc map[string]any) {
				doc["forecast"] = doc["forecast"].([]any)[:6]
			},
			path: "$.forecast",
		},
		{
			name: "long hourly",
			mutate: func(doc map[string]any) {
				hourly := doc["hourly"].([]any)
				doc["hourly"] = append(hourly, hourly[0])
			},
			path: "$.hourly",
		},
		{
			name: "bad entry inside array",
			mutate: func(doc map[string]any) {
				doc["forecast"].([]any)[3] = map[string]any{"day": "Mon"}
			},
			path: "$.forecast[3].temperature",
		},
		{
			name:   "wrong activity count",
			mutate: func(doc map[string]any) { doc["activitySuggestions"] = []any{} },
			path:   "$.activitySuggestions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Weather(Rich).Validate(sampleDoc(t, Rich, tt.mutate))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidateRejectsNonFiniteAndMalformed(t *testing.T) {
	node := Object("", Field("n", Number("")), Field("i", Integer("")))

	assert.NoError(t, node.Validate([]byte(`{"n": 1.5, "i": 4}`)))
	assert.Error(t, node.Validate([]byte(`{"n": 1e999, "i": 4}`)))
	assert.Error(t, node.Validate([]byte(`{"n": 1, "i": 4.5}`)))
	assert.Error(t, node.Validate([]byte(`{"n": 1, "i": 4} {}`)))
	assert.Error(t, node.Validate([]byte(`not json`)))
	assert.Error(t, node.Validate([]byte(`[]`)))
}

func TestOptionalFieldsMayBeOmitted(t *testing.T) {
	node := Object("", Field("a", String("")), Optional("b", Number("")))
	assert.NoError(t, node.Validate([]byte(`{"a": "x"}`)))
	assert.Error(t, node.Validate([]byte(`{"a": "x", "b": "y"}`)))
}

func TestProjectKeepsOnlyDeclaredProperties(t *testing.T) {
	node := Object("",
		Field("a", String("")),
		Optional("b", Number("")),
		Field("list", Array(Object("", Field("x", Integer(""))), 0, "")))

	var value any
	require.NoError(t, json.Unmarshal([]byte(`{"a": "x", "b": null, "extra": 270, "list": [{"x": 1, "y": "drop"}]}`), &value))

	assert.Equal(t, map[string]any{
		"a":    "x",
		"list": []any{map[string]any{"x": float64(1)}},
	}, node.Project(value))
}

func TestDecodeIgnoresUndeclaredFields(t *testing.T) {
	node := Object("", Field("a", String("")), Optional("b", Number("")))

	var out struct {
		A     string   `json:"a"`
		B     *float64 `json:"b"`
		Extra *string  `json:"extra"`
	}
	require.NoError(t, node.Decode([]byte(`{"a": "x", "extra": 270}`), &out))
	assert.Equal(t, "x", out.A)
	assert.Nil(t, out.B)
	assert.Nil(t, out.Extra)

	var verr *ValidationError
	assert.ErrorAs(t, node.Decode([]byte(`{"b": 1}`), &out), &verr)
}

func TestVariantValidate(t *testing.T) {
	assert.Error(t, Variant{ForecastDays: 4, HourlyCount: 7}.Validate())
	assert.Error(t, Variant{ForecastDays: 5, HourlyCount: 12}.Validate())
	assert.Error(t, Variant{ForecastDays: 5, HourlyCount: 7, Activities: -1}.Validate())

	v, err := VariantByName(" RICH ")
	require.NoError(t, err)
	assert.Equal(t, Rich, v)

	v, err = VariantByName("")
	require.NoError(t, err)
	assert.Equal(t, Classic, v)

	_, err = VariantByName("10-day")
	assert.Error(t, err)
}

func TestVariantFieldSets(t *testing.T) {
	classic := Weather(Classic)
	_, ok := classic.Lookup("current.windDirection")
	assert.False(t, ok)
	_, ok = classic.Lookup("forecast.iconUrl")
	assert.False(t, ok)
	_, ok = classic.Property("pollen")
	assert.False(t, ok)

	rich := Weather(Rich)
	for _, path := range []string{
		"current.windDirection", "current.outfitSuggestion", "forecast.minTemperature",
		"forecast.iconUrl", "hourly.apparentTemperature", "airQuality.pm25",
		"pollen.grass.level", "airPollutants.so2.value", "activitySuggestions.iconKey",
	} {
		_, ok := rich.Lookup(path)
		assert.True(t, ok, path)
	}

	forecast, _ := rich.Property("forecast")
	hourly, _ := rich.Property("hourly")
	assert.Equal(t, 7, forecast.Length)
	assert.Equal(t, 24, hourly.Length)
}

func TestGenAIConversion(t *testing.T) {
	s := Weather(Rich).GenAI()

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"current", "forecast", "hourly", "airQuality", "activitySuggestions", "pollen", "airPollutants"}, s.PropertyOrdering)
	assert.ElementsMatch(t, s.PropertyOrdering, s.Required)

	forecast := s.Properties["forecast"]
	require.NotNil(t, forecast)
	assert.Equal(t, genai.TypeArray, forecast.Type)
	require.NotNil(t, forecast.MinItems)
	require.NotNil(t, forecast.MaxItems)
	assert.Equal(t, int64(7), *forecast.MinItems)
	assert.Equal(t, int64(7), *forecast.MaxItems)
	assert.Equal(t, genai.TypeNumber, forecast.Items.Properties["temperature"].Type)
	assert.Equal(t, "Predicted temperature in Celsius.", forecast.Items.Properties["temperature"].Description)

	suggestions := Suggestions().GenAI().Properties["suggestions"]
	assert.Nil(t, suggestions.MinItems)
	assert.Equal(t, genai.TypeString, suggestions.Items.Type)
}

func TestDescribe(t *testing.T) {
	text := Weather(Classic).Describe()

	assert.Contains(t, text, "- current.temperature (number, required): Temperature in Celsius.")
	assert.Contains(t, text, "- forecast (array of exactly 5 entries, required)")
	assert.Contains(t, text, "- hourly (array of exactly 7 entries, required)")
	assert.Contains(t, text, "- forecast[].day (string, required)")
	assert.NotContains(t, text, "iconUrl")

	rich := Weather(Rich).Describe()
	assert.Contains(t, rich, IconURLPattern)
	assert.Equal(t, strings.Count(rich, "\n"), countNodes(Weather(Rich))-1)
}

func countNodes(n *Node) int {
	total := 1
	switch n.Kind {
	case KindObject:
		for _, p := range n.Properties {
			total += countNodes(p.Node)
		}
	case KindArray:
		if n.Items.Kind == KindObject {
			total += countNodes(n.Items) - 1
		}
	}
	return total
}

func ExampleNode_Validate() {
	node := Object("", Field("days", Array(String(""), 2, "")))
	fmt.Println(node.Validate([]byte(`{"days": ["Mon"]}`)))
	// Output: schema: $.days: expected exactly 2 entries, got 1
}
