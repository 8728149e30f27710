package weather

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical fields produced by the normalizer.
type canonicalField string

const (
	fieldLocationBlock canonicalField = "location"
	fieldCurrentBlock  canonicalField = "current"
	fieldLocationName  canonicalField = "locationName"
	fieldTemperature   canonicalField = "temperatureC"
	fieldHumidity      canonicalField = "humidityPct"
	fieldWind          canonicalField = "windMetersPerSec"
	fieldCondition     canonicalField = "conditionText"
	fieldForecastDays  canonicalField = "forecastDays"
	fieldDayDate       canonicalField = "date"
	fieldDayMaxTemp    canonicalField = "maxTemperatureC"
)

const providerDateLayout = "2006-01-02"

// DateLabelLayout is the short day/month display used for forecast days.
const DateLabelLayout = "02.01"

// fieldSource is one raw location a canonical field may be read from.
// Path elements that parse as integers index into arrays.
type fieldSource struct {
	path    []string
	convert func(float64) float64
}

type valueKind int

const (
	kindBlock valueKind = iota
	kindNumber
	kindText
	kindList
)

// fieldMapping lists the raw sources of a canonical field in priority order.
// The first source that resolves to a value of the expected kind wins.
type fieldMapping struct {
	field    canonicalField
	kind     valueKind
	sources  []fieldSource
	required bool
}

func at(path ...string) fieldSource {
	return fieldSource{path: path}
}

// kph marks a source reported in km/h; the canonical unit is m/s.
func kph(path ...string) fieldSource {
	return fieldSource{path: path, convert: kphToMetersPerSec}
}

func kphToMetersPerSec(v float64) float64 {
	return v / 3.6
}

// WeatherAPI.com lowercase keys are the canonical contract. PascalCase blocks
// and the legacy name/main/wind/weather shape are historical names; the
// legacy wind.speed is already in m/s.
var currentMappings = []fieldMapping{
	{
		field:    fieldLocationBlock,
		kind:     kindBlock,
		sources:  []fieldSource{at("location"), at("Location"), at("name"), at("Name")},
		required: true,
	},
	{
		field:    fieldCurrentBlock,
		kind:     kindBlock,
		sources:  []fieldSource{at("current"), at("Current"), at("main"), at("Main")},
		required: true,
	},
	{
		field: fieldLocationName,
		kind:  kindText,
		sources: []fieldSource{
			at("location", "name"), at("Location", "name"), at("Location", "Name"),
			at("name"), at("Name"),
		},
	},
	{
		field: fieldTemperature,
		kind:  kindNumber,
		sources: []fieldSource{
			at("current", "temp_c"), at("Current", "temp_c"), at("Current", "TempC"),
			at("main", "temp"), at("Main", "Temp"),
		},
		required: true,
	},
	{
		field: fieldHumidity,
		kind:  kindNumber,
		sources: []fieldSource{
			at("current", "humidity"), at("Current", "humidity"), at("Current", "Humidity"),
			at("main", "humidity"), at("Main", "Humidity"),
		},
	},
	{
		field: fieldWind,
		kind:  kindNumber,
		sources: []fieldSource{
			kph("current", "wind_kph"), kph("Current", "wind_kph"), kph("Current", "WindKph"),
			at("wind", "speed"), at("Wind", "Speed"),
		},
	},
	{
		field: fieldCondition,
		kind:  kindText,
		sources: []fieldSource{
			at("current", "condition", "text"), at("Current", "condition", "text"), at("Current", "Condition", "Text"),
			at("weather", "0", "description"), at("Weather", "0", "Description"),
		},
	},
}

var forecastMappings = []fieldMapping{
	currentMappings[0],
	currentMappings[2],
	{
		field: fieldForecastDays,
		kind:  kindList,
		sources: []fieldSource{
			at("forecast", "forecastday"), at("Forecast", "forecastday"),
			at("Forecast", "Forecastday"), at("Forecast", "ForecastDay"),
		},
		required: true,
	},
}

// Resolved relative to a single forecast day entry.
var forecastDayMappings = []fieldMapping{
	{
		field:    fieldDayDate,
		kind:     kindText,
		sources:  []fieldSource{at("date"), at("Date")},
		required: true,
	},
	{
		field: fieldDayMaxTemp,
		kind:  kindNumber,
		sources: []fieldSource{
			at("day", "maxtemp_c"), at("Day", "maxtemp_c"), at("Day", "MaxTempC"),
		},
		required: true,
	},
	{
		field: fieldCondition,
		kind:  kindText,
		sources: []fieldSource{
			at("day", "condition", "text"), at("Day", "condition", "text"), at("Day", "Condition", "Text"),
		},
	},
}

// NormalizeCurrent maps a raw current-conditions payload to CurrentConditions.
// It returns false when the payload is malformed or lacks a required block.
func NormalizeCurrent(raw []byte, requestedCity string) (CurrentConditions, bool) {
	doc, ok := decode(raw)
	if !ok {
		return CurrentConditions{}, false
	}
	fields := resolve(doc, currentMappings)
	if !fields.complete {
		return CurrentConditions{}, false
	}

	name := strings.TrimSpace(fields.text(fieldLocationName))
	if name == "" {
		name = requestedCity
	}

	return CurrentConditions{
		LocationName:     name,
		TemperatureC:     fields.number(fieldTemperature),
		HumidityPct:      clampPercent(fields.number(fieldHumidity)),
		WindMetersPerSec: math.Max(0, fields.number(fieldWind)),
		ConditionText:    strings.TrimSpace(fields.text(fieldCondition)),
	}, true
}

// NormalizeForecast maps a raw multi-day payload to a Forecast of exactly
// ForecastDays days. Day entries with a malformed date or no maximum
// temperature are dropped before the count is checked.
func NormalizeForecast(raw []byte, requestedCity string) (Forecast, bool) {
	doc, ok := decode(raw)
	if !ok {
		return Forecast{}, false
	}
	fields := resolve(doc, forecastMappings)
	if !fields.complete {
		return Forecast{}, false
	}
	entries, ok := fields.values[fieldForecastDays].([]any)
	if !ok {
		return Forecast{}, false
	}

	days := make([]ForecastDay, 0, ForecastDays)
	for _, entry := range entries {
		if len(days) == ForecastDays {
			break
		}
		day, ok := normalizeDay(entry)
		if !ok {
			continue
		}
		days = append(days, day)
	}
	if len(days) < ForecastDays {
		return Forecast{}, false
	}

	name := strings.TrimSpace(fields.text(fieldLocationName))
	if name == "" {
		name = requestedCity
	}
	return Forecast{LocationName: name, Days: days}, true
}

func normalizeDay(entry any) (ForecastDay, bool) {
	fields := resolve(entry, forecastDayMappings)
	if !fields.complete {
		return ForecastDay{}, false
	}
	date, err := time.Parse(providerDateLayout, strings.TrimSpace(fields.text(fieldDayDate)))
	if err != nil {
		return ForecastDay{}, false
	}
	return ForecastDay{
		DateLabel:       date.Format(DateLabelLayout),
		MaxTemperatureC: fields.number(fieldDayMaxTemp),
		ConditionText:   strings.TrimSpace(fields.text(fieldCondition)),
	}, true
}

func decode(raw []byte) (any, bool) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, false
	}
	return doc, true
}

type resolvedFields struct {
	values   map[canonicalField]any
	complete bool
}

func (r resolvedFields) number(f canonicalField) float64 {
	v, _ := r.values[f].(float64)
	return v
}

func (r resolvedFields) text(f canonicalField) string {
	v, _ := r.values[f].(string)
	return v
}

func resolve(doc any, mappings []fieldMapping) resolvedFields {
	out := resolvedFields{values: make(map[canonicalField]any, len(mappings)), complete: true}
	for _, m := range mappings {
		v, ok := m.resolve(doc)
		if !ok {
			if m.required {
				out.complete = false
			}
			continue
		}
		out.values[m.field] = v
	}
	return out
}

// resolve returns the first value among the sources that has the mapping's
// kind, with the source's unit conversion applied.
func (m fieldMapping) resolve(doc any) (any, bool) {
	for _, src := range m.sources {
		v, ok := lookup(doc, src.path)
		if !ok || !m.kind.matches(v) {
			continue
		}
		if src.convert != nil {
			return src.convert(v.(float64)), true
		}
		return v, true
	}
	return nil, false
}

// A location block may be an object or, in the legacy shape, a bare name.
func (k valueKind) matches(v any) bool {
	switch v.(type) {
	case map[string]any:
		return k == kindBlock
	case string:
		return k == kindText || k == kindBlock
	case float64:
		return k == kindNumber
	case []any:
		return k == kindList
	default:
		return false
	}
}

func lookup(doc any, path []string) (any, bool) {
	cur := doc
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func clampPercent(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(math.Round(v))
	}
}
