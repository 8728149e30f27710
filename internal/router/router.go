// Package router classifies chat events into intents. Classification is a
// pure function of the event: no I/O, no state.
package router

import (
	"strings"

	"github.com/i474232898/weather-chat-bot/internal/chat"
	"github.com/i474232898/weather-chat-bot/internal/common"
)

// Commands understood in text messages. Matching is case-insensitive.
const (
	CommandStart    = "/start"
	CommandWeather  = "/weather"
	CommandForecast = "/forecast"
	CommandCities   = "/cities"
)

// Button payloads. City names follow the prefixes verbatim.
const (
	PayloadShowCities     = "show_cities"
	PayloadCityPrefix     = "city_"
	PayloadForecastPrefix = "forecast_"
)

// CityPayload returns the button payload requesting current conditions for city.
func CityPayload(city string) string { return PayloadCityPrefix + city }

// ForecastPayload returns the button payload requesting a forecast for city.
func ForecastPayload(city string) string { return PayloadForecastPrefix + city }

// textInput is a trimmed text message split into its command token and argument.
type textInput struct {
	text    string
	command string // lowercased, "@botname" stripped; empty unless text starts with "/"
	arg     string
}

func parseText(raw string) textInput {
	in := textInput{text: strings.TrimSpace(raw)}
	if !strings.HasPrefix(in.text, "/") {
		return in
	}
	head, rest := common.CutFirstField(in.text)
	if at := strings.IndexByte(head, '@'); at > 0 {
		head = head[:at]
	}
	in.command = strings.ToLower(head)
	in.arg = rest
	return in
}

type textRule struct {
	name  string
	match func(in textInput) bool
	build func(in textInput) Intent
}

type buttonRule struct {
	name  string
	match func(payload string) (arg string, ok bool)
	build func(arg string) Intent
}

// Text rules in priority order. A command with an argument is always tried
// before the same bare command.
var textRules = []textRule{
	{
		name:  "start",
		match: bare(CommandStart),
		build: func(textInput) Intent { return ShowMenu{} },
	},
	{
		name:  "weather-city",
		match: withArg(CommandWeather),
		build: func(in textInput) Intent { return RequestCurrent{City: in.arg} },
	},
	{
		name:  "weather-bare",
		match: bare(CommandWeather),
		build: func(textInput) Intent { return MissingArgument{Command: CommandWeather} },
	},
	{
		name:  "forecast-city",
		match: withArg(CommandForecast),
		build: func(in textInput) Intent { return RequestForecast{City: in.arg} },
	},
	{
		name:  "forecast-bare",
		match: bare(CommandForecast),
		build: func(textInput) Intent { return MissingArgument{Command: CommandForecast} },
	},
	{
		name:  "cities",
		match: bare(CommandCities),
		build: func(textInput) Intent { return ShowCityPicker{} },
	},
	{
		name:  "unknown-command",
		match: func(in textInput) bool { return in.command != "" },
		build: func(in textInput) Intent { return Unknown{RawText: in.text} },
	},
	{
		name:  "implicit-city",
		match: func(in textInput) bool { return in.text != "" },
		build: func(in textInput) Intent { return RequestCurrent{City: in.text} },
	},
}

var buttonRules = []buttonRule{
	{
		name: "show-cities",
		match: func(p string) (string, bool) {
			return "", p == PayloadShowCities
		},
		build: func(string) Intent { return ShowCityPicker{} },
	},
	{
		name: "city",
		match: func(p string) (string, bool) {
			return common.CutPrefixNonEmpty(p, PayloadCityPrefix)
		},
		build: func(city string) Intent { return RequestCurrent{City: city} },
	},
	{
		name: "forecast",
		match: func(p string) (string, bool) {
			return common.CutPrefixNonEmpty(p, PayloadForecastPrefix)
		},
		build: func(city string) Intent { return RequestForecast{City: city} },
	},
}

func bare(command string) func(textInput) bool {
	return func(in textInput) bool { return in.command == command && in.arg == "" }
}

func withArg(command string) func(textInput) bool {
	return func(in textInput) bool { return in.command == command && in.arg != "" }
}

// Classify maps a chat event to an Intent. It never fails: input that
// matches no rule yields Unknown.
func Classify(ev chat.Event) Intent {
	switch ev := ev.(type) {
	case chat.TextMessage:
		return classifyText(ev.Text)
	case chat.ButtonPress:
		return classifyButton(ev.Payload)
	default:
		return Unknown{}
	}
}

func classifyText(raw string) Intent {
	in := parseText(raw)
	for _, r := range textRules {
		if r.match(in) {
			return r.build(in)
		}
	}
	return Unknown{RawText: in.text}
}

func classifyButton(payload string) Intent {
	for _, r := range buttonRules {
		if arg, ok := r.match(payload); ok {
			return r.build(arg)
		}
	}
	return Unknown{RawText: payload}
}

// TextRuleNames returns the text rule names in evaluation order.
func TextRuleNames() []string {
	names := make([]string, 0, len(textRules))
	for _, r := range textRules {
		names = append(names, r.name)
	}
	return names
}
