package router

// Intent is the classified meaning of a chat event.
type Intent interface {
	// NeedsWeather reports whether the intent requires a provider lookup.
	NeedsWeather() bool
	isIntent()
}

// ShowMenu asks for the welcome message with the command list.
type ShowMenu struct{}

// ShowCityPicker asks for the static keyboard of preconfigured cities.
type ShowCityPicker struct{}

// RequestCurrent asks for the current conditions in City.
type RequestCurrent struct {
	City string
}

// RequestForecast asks for the multi-day forecast for City.
type RequestForecast struct {
	City string
}

// MissingArgument is a known command sent without its required city.
// It is answered with a usage hint.
type MissingArgument struct {
	Command string
}

// Unknown is input that matched no rule: an unrecognized command or an
// unrecognized button payload.
type Unknown struct {
	RawText string
}

func (ShowMenu) NeedsWeather() bool        { return false }
func (ShowCityPicker) NeedsWeather() bool  { return false }
func (RequestCurrent) NeedsWeather() bool  { return true }
func (RequestForecast) NeedsWeather() bool { return true }
func (MissingArgument) NeedsWeather() bool { return false }
func (Unknown) NeedsWeather() bool         { return false }

func (ShowMenu) isIntent()        {}
func (ShowCityPicker) isIntent()  {}
func (RequestCurrent) isIntent()  {}
func (RequestForecast) isIntent() {}
func (MissingArgument) isIntent() {}
func (Unknown) isIntent()         {}
