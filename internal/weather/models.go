package weather

// ForecastDays is the number of days a Forecast always carries.
const ForecastDays = 5

// Result is the outcome of a weather lookup handed to the renderer:
// CurrentConditions, Forecast or Unavailable. A nil Result means no lookup
// was needed.
type Result interface {
	isResult()
}

// CurrentConditions is the normalized current weather for a location.
// All values are metric; wind is in meters per second.
type CurrentConditions struct {
	LocationName     string  `json:"locationName"`
	TemperatureC     float64 `json:"temperatureC"`
	HumidityPct      int     `json:"humidityPct"`
	WindMetersPerSec float64 `json:"windMetersPerSec"`
	ConditionText    string  `json:"conditionText"`
}

// ForecastDay is a single calendar day of a Forecast.
type ForecastDay struct {
	DateLabel       string  `json:"dateLabel"`
	MaxTemperatureC float64 `json:"maxTemperatureC"`
	ConditionText   string  `json:"conditionText"`
}

// Forecast is a multi-day forecast ordered by date ascending.
// Days always has exactly ForecastDays entries.
type Forecast struct {
	LocationName string        `json:"locationName"`
	Days         []ForecastDay `json:"days"`
}

// Unavailable means provider data could not be obtained or was incomplete.
// It is rendered the same way regardless of the root cause.
type Unavailable struct {
	City string `json:"city"`
}

func (CurrentConditions) isResult() {}
func (Forecast) isResult()          {}
func (Unavailable) isResult()       {}
