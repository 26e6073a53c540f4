package api

import (
	"net/http"

	"github.com/Rrens/talent-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/talent-chat/internal/api/middleware"
	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/llm"
	"github.com/Rrens/talent-chat/internal/llm/anthropic"
	"github.com/Rrens/talent-chat/internal/llm/deepseek"
	"github.com/Rrens/talent-chat/internal/llm/gemini"
	"github.com/Rrens/talent-chat/internal/llm/ollama"
	"github.com/Rrens/talent-chat/internal/llm/openai"
	"github.com/Rrens/talent-chat/internal/media"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/Rrens/talent-chat/internal/repository/redis"
	"github.com/Rrens/talent-chat/internal/security"
	"github.com/Rrens/talent-chat/internal/service"
	"github.com/Rrens/talent-chat/internal/speech"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Dependencies are the opened backends the router wires into services.
// Redis is optional; without it the catalog is not cached and requests are
// not rate limited.
type Dependencies struct {
	Stores      *repository.Backend
	Redis       *redis.Client
	Media       media.Store
	Synthesizer speech.Synthesizer
	LLM         *llm.Router
}

// NewLLMRouter registers every configured analysis provider
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	}
	if cfg.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model, ""))
	}
	if cfg.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Debug().Msg("Gemini API key is empty, skipping registration")
	}

	return llmRouter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	var questionCache *redis.QuestionCache
	var rateLimiter *redis.RateLimiter
	if deps.Redis != nil {
		questionCache = redis.NewQuestionCache(deps.Redis, cfg.Redis.CacheTTL)
		rateLimiter = redis.NewRateLimiter(
			deps.Redis,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	llmRouter := deps.LLM
	if llmRouter == nil {
		llmRouter = NewLLMRouter(cfg.LLM)
	}

	// Initialize services
	stores := deps.Stores
	var pool *service.QuestionPool
	if questionCache != nil {
		pool = service.NewQuestionPool(stores.Questions, questionCache)
	} else {
		pool = service.NewQuestionPool(stores.Questions, nil)
	}
	authService := service.NewAuthService(stores.Participants, jwtManager, cfg.Session)
	engine := service.NewSessionEngine(stores.Sessions, pool, cfg.Session)
	recorder := service.NewAnswerRecorder(engine, deps.Media)
	pipeline := service.NewSummaryPipeline(
		stores.Sessions,
		stores.Summaries,
		llm.NewAnalyzer(llmRouter, "", cfg.LLM.Language),
		deps.Synthesizer,
		deps.Media,
		cfg.Session,
		service.SummaryTimeouts{Analysis: cfg.LLM.Timeout, Speech: cfg.Speech.Timeout},
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(engine, recorder, cfg.Security.MaxUploadBytes)
	summaryHandler := handler.NewSummaryHandler(pipeline, deps.Media)

	readiness := map[string]handler.Pinger{"database": stores}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(readiness))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if rateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}

			r.Get("/me", authHandler.Me)
			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))
			if questionCache != nil {
				r.Post("/cache/flush", handler.FlushCache(questionCache))
			}

			r.Route("/chats", func(r chi.Router) {
				r.Post("/", chatHandler.Start)

				r.Route("/{chatID}", func(r chi.Router) {
					r.Post("/next", chatHandler.Advance)
					r.Post("/close", chatHandler.Close)
					r.Post("/questions/{questionID}/answers", chatHandler.Answer)
				})
			})

			r.Post("/summaries", summaryHandler.Create)
		})
	})

	return r
}
