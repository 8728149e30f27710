// Package render turns intents and weather results into outgoing chat messages.
package render

import (
	"bytes"
	"embed"
	"math"
	"strconv"
	"text/template"

	"github.com/i474232898/weather-chat-bot/internal/chat"
	"github.com/i474232898/weather-chat-bot/internal/router"
	"github.com/i474232898/weather-chat-bot/internal/weather"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var messages = template.Must(
	template.New("messages").
		Funcs(template.FuncMap{"temp": formatTemperature}).
		ParseFS(templatesFS, "templates/*.tmpl"),
)

// FallbackText is sent when a template cannot be executed.
const FallbackText = "❌ Произошла ошибка. Попробуйте позже."

const pickerColumns = 2

// Button labels.
const (
	LabelOtherCity = "🏙️ Другой город"
	LabelForecast  = "📊 Прогноз на 5 дней"
	LabelPickCity  = "🏙️ Выбрать город"
)

const cityButtonPrefix = "🏙️ "

// City is one entry of the static city picker.
type City struct {
	Label string `yaml:"label" validate:"required"`
	Query string `yaml:"query" validate:"required"`
}

// DefaultCities is the picker used when no city list is configured.
var DefaultCities = []City{
	{Label: "Москва", Query: "Moscow"},
	{Label: "СПб", Query: "St Petersburg"},
	{Label: "Нью-Йорк", Query: "New York"},
	{Label: "Лондон", Query: "London"},
	{Label: "Париж", Query: "Paris"},
	{Label: "Стокгольм", Query: "Stockholm"},
	{Label: "Бишкек", Query: "Bishkek"},
	{Label: "София", Query: "Sofia"},
	{Label: "Дубай", Query: "Dubai"},
	{Label: "Воронеж", Query: "Voronezh"},
}

// Renderer formats one outgoing message per intent and result.
// It is deterministic and safe for concurrent use.
type Renderer struct {
	picker [][]chat.Button
}

// New creates a Renderer whose city picker lists cities, pickerColumns per row.
func New(cities []City) *Renderer {
	if len(cities) == 0 {
		cities = DefaultCities
	}
	return &Renderer{picker: cityRows(cities)}
}

// Render builds the reply for intent. result is the weather lookup outcome
// for intents that need one, nil otherwise. ChatID is left for the caller.
func (r *Renderer) Render(intent router.Intent, result weather.Result) chat.OutgoingMessage {
	switch in := intent.(type) {
	case router.ShowMenu:
		return text("menu", nil)
	case router.ShowCityPicker:
		msg := text("picker", nil)
		msg.Buttons = r.picker
		return msg
	case router.MissingArgument:
		return text("usage", in.Command)
	case router.RequestCurrent:
		current, ok := result.(weather.CurrentConditions)
		if !ok {
			return text("current-unavailable", in.City)
		}
		msg := text("current", current)
		msg.Buttons = [][]chat.Button{buttons(
			chat.Button{Text: LabelOtherCity, Payload: router.PayloadShowCities},
			chat.Button{Text: LabelForecast, Payload: router.ForecastPayload(in.City)},
		)}
		return msg
	case router.RequestForecast:
		forecast, ok := result.(weather.Forecast)
		if !ok {
			return text("forecast-unavailable", in.City)
		}
		msg := text("forecast", forecast)
		msg.Buttons = [][]chat.Button{buttons(
			chat.Button{Text: LabelPickCity, Payload: router.PayloadShowCities},
		)}
		return msg
	default:
		return text("unknown", nil)
	}
}

func text(name string, data any) chat.OutgoingMessage {
	var buf bytes.Buffer
	if err := messages.ExecuteTemplate(&buf, name, data); err != nil {
		return chat.OutgoingMessage{Text: FallbackText}
	}
	return chat.OutgoingMessage{Text: buf.String()}
}

// buttons drops buttons whose payload the messaging provider would reject.
func buttons(candidates ...chat.Button) []chat.Button {
	row := make([]chat.Button, 0, len(candidates))
	for _, b := range candidates {
		if len(b.Payload) > chat.MaxButtonPayloadBytes {
			continue
		}
		row = append(row, b)
	}
	return row
}

func cityRows(cities []City) [][]chat.Button {
	var all []chat.Button
	for _, c := range cities {
		all = append(all, chat.Button{Text: cityButtonPrefix + c.Label, Payload: router.CityPayload(c.Query)})
	}
	all = buttons(all...)

	rows := make([][]chat.Button, 0, (len(all)+pickerColumns-1)/pickerColumns)
	for len(all) > 0 {
		n := min(pickerColumns, len(all))
		rows = append(rows, all[:n:n])
		all = all[n:]
	}
	return rows
}

// formatTemperature prints at most one decimal and no trailing zeros.
func formatTemperature(c float64) string {
	c = math.Round(c*10) / 10
	if c == 0 {
		c = 0 // drop negative zero
	}
	return strconv.FormatFloat(c, 'f', -1, 64)
}
