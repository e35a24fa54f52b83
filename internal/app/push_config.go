package app

import (
	"strings"

	"github.com/riverwatchhq/riverwatch/internal/push"
)

// GatewayConfig maps the push section onto the gateway sender's options.
func (c PushConfig) GatewayConfig() push.Config {
	return push.Config{
		GatewayURL: strings.TrimSpace(c.GatewayURL),
		APIKey:     strings.TrimSpace(c.APIKey),
		Timeout:    c.Timeout,
	}
}
