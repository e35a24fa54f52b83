package models

// Severity classifies how hydrologically significant a crossed threshold is.
type Severity string

const (
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
	SeverityMajor       Severity = "major"
	SeveritySevere      Severity = "severe"
	SeverityExtreme     Severity = "extreme"
)

// SeverityForReturnPeriod maps return-period years to a severity class.
// Longer recurrence intervals indicate rarer, more dangerous flows.
func SeverityForReturnPeriod(years int) Severity {
	switch {
	case years >= 50:
		return SeverityExtreme
	case years >= 25:
		return SeveritySevere
	case years >= 10:
		return SeverityMajor
	case years >= 5:
		return SeveritySignificant
	default:
		return SeverityModerate
	}
}

// Rank orders severities from moderate (1) to extreme (5). Unknown values
// rank below moderate.
func (s Severity) Rank() int {
	switch s {
	case SeverityModerate:
		return 1
	case SeveritySignificant:
		return 2
	case SeverityMajor:
		return 3
	case SeveritySevere:
		return 4
	case SeverityExtreme:
		return 5
	default:
		return 0
	}
}

// DisplayName returns the human form used in notification titles.
func (s Severity) DisplayName() string {
	switch s {
	case SeverityModerate:
		return "Moderate"
	case SeveritySignificant:
		return "Significant"
	case SeverityMajor:
		return "Major"
	case SeveritySevere:
		return "Severe"
	case SeverityExtreme:
		return "Extreme"
	default:
		return "Unknown"
	}
}
