package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-gonic/gin"

	"chat-relay/handler"
	"chat-relay/internal/config"
	"chat-relay/internal/integrations/apikey"
	"chat-relay/internal/integrations/gemini"
	"chat-relay/internal/integrations/openai"
	"chat-relay/internal/integrations/paramstore"
	"chat-relay/internal/logging"
	"chat-relay/internal/prompt"
	"chat-relay/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, err := logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		logger.Warn("log file unavailable, using stdout", "path", cfg.LogFile, "err", err)
	}

	// ---- Parameter store (optional) ----
	var params *paramstore.Client
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			fatal("failed to load AWS config", err)
		}
		params, err = paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			fatal("failed to create SSM client", err)
		}
	}

	// ---- System prompt ----
	sources := prompt.Sources{
		Inline:    cfg.SystemPrompt,
		File:      cfg.SystemPromptFile,
		ParamName: cfg.PromptParameter(),
		Profile:   cfg.PromptProfile,
	}
	if params != nil {
		sources.Params = params
	}
	selected, err := prompt.Resolve(ctx, sources)
	if err != nil {
		fatal("failed to resolve system prompt", err)
	}

	// ---- Model client ----
	llm, err := newLLMClient(cfg, params)
	if err != nil {
		fatal("failed to create LLM client", err)
	}

	chatService, err := usecase.NewChatService(llm, selected.Text, usecase.ModelSettings{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		fatal("failed to create chat service", err)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chatService,
		handler.WithLogger(logger),
		handler.WithExposeUpstreamErrors(cfg.ExposeUpstreamErrors),
	)
	if err != nil {
		fatal("failed to create handler", err)
	}

	logger.Info("chat relay starting",
		"mode", cfg.Mode,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"prompt_origin", selected.Origin,
		"api_key_from_env", cfg.APIKey != "",
	)

	if cfg.Mode == config.ModeLambda {
		lambda.Start(h.Handle)
		return
	}
	serveHTTP(cfg, h, logger)
}

func newLLMClient(cfg config.Config, params *paramstore.Client) (usecase.LLMClient, error) {
	var keys apikey.Source = apikey.Static(cfg.APIKey)
	if cfg.APIKey == "" && params != nil {
		src, err := apikey.FromParamStore(params, cfg.TokenParameter())
		if err != nil {
			return nil, err
		}
		keys = src
	}

	if cfg.Provider == config.ProviderGemini {
		opts := []gemini.Option{gemini.WithTimeout(cfg.UpstreamTimeout)}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		return gemini.NewClient(keys, opts...)
	}

	opts := []openai.Option{openai.WithTimeout(cfg.UpstreamTimeout)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.NewClient(cfg.Provider, keys, opts...)
}

func serveHTTP(cfg config.Config, h *handler.Handler, logger *slog.Logger) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("http server failed", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
