package app

import (
	"strings"

	"github.com/riverwatchhq/riverwatch/internal/nwps"
)

// ClientConfig maps the forecast section onto the upstream client's options.
func (c ForecastConfig) ClientConfig() nwps.Config {
	return nwps.Config{
		BaseURL: strings.TrimSpace(c.BaseURL),
		APIKey:  strings.TrimSpace(c.APIKey),
		Timeout: c.Timeout,
	}
}
