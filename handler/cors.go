package handler

import "strings"

const (
	corsAllowOriginKey  = "Access-Control-Allow-Origin"
	corsAllowOriginAll  = "*"
	corsExposeHeaderKey = "Access-Control-Expose-Headers"
	corsAllowMethods    = "POST, OPTIONS"
	corsDefaultHeaders  = "Content-Type, " + correlationHeader
	corsMaxAgeSeconds   = "600"
)

// preflightHeaders answers a CORS preflight from any origin, allowing whatever
// headers the browser asked for.
func preflightHeaders(requested string) map[string]string {
	allowHeaders := strings.TrimSpace(requested)
	if allowHeaders == "" {
		allowHeaders = corsDefaultHeaders
	}
	return map[string]string{
		"Access-Control-Allow-Methods": corsAllowMethods,
		"Access-Control-Allow-Headers": allowHeaders,
		"Access-Control-Max-Age":       corsMaxAgeSeconds,
	}
}
