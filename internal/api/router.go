package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/coldcall/internal/api/handlers"
	"github.com/nikhilbhutani/coldcall/internal/api/middleware"
	"github.com/nikhilbhutani/coldcall/internal/config"
	"github.com/nikhilbhutani/coldcall/internal/dialer"
	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/queue"
	"github.com/nikhilbhutani/coldcall/internal/synth"
	"github.com/nikhilbhutani/coldcall/internal/telephony"
)

type Router struct {
	mux   *chi.Mux
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	tel := telephony.NewTwilio(rt.cfg.Twilio.AccountSID, rt.cfg.Twilio.AuthToken, rt.cfg.Twilio.FromNumber)

	cache, err := BuildSynthCache(rt.cfg)
	if err != nil {
		return nil, err
	}

	engine := dialog.NewEngine(clipProvider(cache), tel, dialog.Config{
		BaseURL:  rt.cfg.Dialer.PublicBaseURL,
		LinkURL:  rt.cfg.Dialer.LinkURL,
		LinkBody: rt.cfg.Dialer.LinkBody,
	})

	dispatcher := dialer.New(tel, engine, warmer(cache), dialer.Config{
		FromNumber:     rt.cfg.Twilio.FromNumber,
		PublicBaseURL:  rt.cfg.Dialer.PublicBaseURL,
		RingTimeoutSec: rt.cfg.Dialer.RingTimeoutSec,
	})

	queueClient := queue.NewClient(rt.cfg.Redis)

	// Telephony webhooks. The stage callbacks are signature-validated; the
	// clip endpoints are not, since the provider fetches media without
	// signing.
	voiceH := handlers.NewVoiceHandler(engine, liveSynth(cache))
	r.Route("/voice", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.TwilioSignature(
				rt.cfg.Twilio.AuthToken,
				rt.cfg.Dialer.PublicBaseURL,
				rt.cfg.Twilio.ValidateSignatures,
			))
			r.Post("/intro", voiceH.Intro)
			r.Post("/qualify", voiceH.Qualify)
			r.Post("/handoff", voiceH.Handoff)
			r.Post("/status", voiceH.Status)
		})
		r.Get("/clip", voiceH.Clip)
	})

	// Cached clips as static audio.
	if cache != nil {
		fs := http.FileServer(http.Dir(rt.cfg.Synthesis.CacheDir))
		r.Handle("/clips/*", http.StripPrefix("/clips/", fs))
	}

	// Management API
	callsH := handlers.NewCallsHandler(dispatcher, queueClient)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(rt.cfg.Auth.APIKeyHeader, rt.cfg.Auth.APIKey))
		r.Post("/calls", callsH.Dial)
		r.Post("/campaigns", callsH.Campaign)
	})

	return r, nil
}

// BuildSynthCache assembles the clip cache from config, or returns nil when
// synthesis is disabled or the primary provider has no key.
func BuildSynthCache(cfg *config.Config) (*synth.Cache, error) {
	sc := cfg.Synthesis
	if !sc.Enabled || sc.ElevenLabsKey == "" {
		return nil, nil
	}

	store, err := synth.NewDiskStore(sc.CacheDir, cfg.Dialer.PublicBaseURL+"/clips")
	if err != nil {
		return nil, err
	}

	primary := synth.NewElevenLabs(synth.ElevenLabsConfig{
		APIKey:  sc.ElevenLabsKey,
		BaseURL: sc.ElevenLabsBaseURL,
		ModelID: sc.ElevenLabsModel,
	})

	var fallback synth.Provider
	if sc.OpenAIKey != "" {
		fallback = synth.NewOpenAITTS(synth.OpenAIConfig{
			APIKey: sc.OpenAIKey,
			Voice:  sc.OpenAIVoice,
		})
	}

	return synth.NewCache(store, primary, fallback, synth.CacheConfig{
		Concurrency:    sc.Concurrency,
		MaxAttempts:    sc.MaxAttempts,
		BaseDelay:      sc.BaseDelay,
		MaxDelay:       sc.MaxDelay,
		ProxyBaseURL:   cfg.Dialer.PublicBaseURL + "/voice/clip",
		Voices:         sc.Voices,
		DefaultVoiceID: sc.DefaultVoiceID,
	}), nil
}

// Typed-nil guards: a nil *synth.Cache must become a nil interface, not a
// non-nil interface holding a nil pointer.

func clipProvider(c *synth.Cache) dialog.ClipProvider {
	if c == nil {
		return nil
	}
	return c
}

func warmer(c *synth.Cache) dialer.Warmer {
	if c == nil {
		return nil
	}
	return c
}

func liveSynth(c *synth.Cache) handlers.LiveSynthesizer {
	if c == nil {
		return nil
	}
	return c
}
