package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
	"chat-relay/internal/usecase"
)

type stubUseCase struct {
	out    usecase.ChatOutput
	err    error
	in     usecase.ChatInput
	called bool
}

func (s *stubUseCase) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.in = in
	s.called = true
	if s.err != nil {
		return usecase.ChatOutput{}, s.err
	}
	out := s.out
	if out.ConversationID == "" {
		out.ConversationID = domain.ResolveConversationID(in.ConversationID)
	}
	return out, nil
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func mustHandler(t *testing.T, uc ChatUseCase, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(uc, opts...)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Response: "4"}}
	h := mustHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"What is 2+2?","conversation_id":"abc-123"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.ChatInput{Message: "What is 2+2?", ConversationID: "abc-123"}, uc.in)
	require.JSONEq(t, `{"response":"4","conversation_id":"abc-123"}`, resp.Body)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_DefaultConversationID(t *testing.T) {
	h := mustHandler(t, &stubUseCase{out: usecase.ChatOutput{Response: "hi"}})

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "new-conversation", out.ConversationID)
}

func TestHandle_MissingMessageIsForwardedEmpty(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Response: "How can I help?"}}
	h := mustHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, uc.called)
	require.Equal(t, "", uc.in.Message)
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	h := mustHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(`not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.False(t, uc.called)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])

	out := parseBody[map[string]string](t, resp.Body)
	require.Contains(t, out, "error")
	require.NotContains(t, out, "response")
	require.Contains(t, out["error"], "invalid character")
}

func TestHandle_Base64Body(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Response: "ok"}}
	h := mustHandler(t, uc)

	event := makeEvent(base64.StdEncoding.EncodeToString([]byte(`{"message":"hello","conversation_id":"c-1"}`)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hello", uc.in.Message)
}

func TestHandle_AllFailuresAre500(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "llm_status_error", Err: errors.New("groq: 401 Unauthorized invalid api key")}, want: "groq: 401 Unauthorized invalid api key"},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "llm_rate_limited", Err: errors.New("groq: 429 Too Many Requests")}, want: "groq: 429 Too Many Requests"},
		{name: "missing key", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "api_key_missing", Err: domain.ErrMissingAPIKey}, want: "api key is not configured"},
		{name: "unexpected", err: errors.New("boom"), want: "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := mustHandler(t, &stubUseCase{err: tc.err})

			resp, err := h.Handle(context.Background(), makeEvent(`{"message":"hello"}`))
			require.NoError(t, err)
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			require.Equal(t, "application/json", resp.Headers["Content-Type"])
			require.JSONEq(t, `{"error":`+mustJSON(t, tc.want)+`}`, resp.Body)
		})
	}
}

func TestHandle_HidesUpstreamErrorsWhenConfigured(t *testing.T) {
	uc := &stubUseCase{err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "llm_status_error", Err: errors.New("invalid api key gsk-***")}}
	h := mustHandler(t, uc, WithExposeUpstreamErrors(false))

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "model provider request failed", out.Error)

	h = mustHandler(t, &stubUseCase{err: errors.New("raw failure")}, WithExposeUpstreamErrors(false))
	resp, err = h.Handle(context.Background(), makeEvent(`{"message":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, "internal error", parseBody[errorResponse](t, resp.Body).Error)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := mustHandler(t, &stubUseCase{out: usecase.ChatOutput{Response: "ok"}})

	event := makeEvent(`{"message":"hello"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

func TestHandle_Preflight(t *testing.T) {
	uc := &stubUseCase{}
	h := mustHandler(t, uc)

	event := makeEvent("")
	event.HTTPMethod = http.MethodOptions
	event.Headers["access-control-request-headers"] = "content-type"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.Equal(t, "content-type", resp.Headers["Access-Control-Allow-Headers"])
	require.Contains(t, resp.Headers["Access-Control-Allow-Methods"], "POST")
	require.False(t, uc.called)
}

func TestHandle_RejectsOtherMethods(t *testing.T) {
	h := mustHandler(t, &stubUseCase{})

	event := makeEvent("")
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
