package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle serves the chat route behind API Gateway.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := resolveCorrelationID(headerValue(event.Headers, correlationHeader))
	headers := map[string]string{
		"Content-Type":      contentTypeJSON,
		correlationHeader:   correlationID,
		corsAllowOriginKey:  corsAllowOriginAll,
		corsExposeHeaderKey: correlationHeader,
	}

	switch strings.ToUpper(event.HTTPMethod) {
	case http.MethodOptions:
		for k, v := range preflightHeaders(headerValue(event.Headers, "Access-Control-Request-Headers")) {
			headers[k] = v
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	case http.MethodPost, "":
	default:
		return jsonResponse(http.StatusMethodNotAllowed, headers, errorResponse{Error: "method not allowed"}), nil
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			status, payload := h.failure(h.logger.With("correlation_id", correlationID), err)
			return jsonResponse(status, headers, payload), nil
		}
		body = decoded
	}

	status, payload := h.relay(ctx, body, correlationID)
	return jsonResponse(status, headers, payload), nil
}

func jsonResponse(status int, headers map[string]string, payload any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(raw),
	}
}

// headerValue looks up a header ignoring case; API Gateway forwards client casing.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
