// Package push delivers notifications to user devices through a push
// gateway. The gateway owns platform specifics (APNs, FCM); this package
// only speaks the gateway's HTTP API.
package push

import "context"

// Sender delivers one notification to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
