package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclesense/internal/logging"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
)

const (
	defaultAuthTokenTTL = 7 * 24 * time.Hour
	loginFailureLimit   = 5
	loginFailureWindow  = 15 * time.Minute
)

type Handler struct {
	auth      *services.AuthService
	profiles  *services.ProfileService
	cycles    *services.CycleService
	journal   *services.JournalService
	forecasts *services.ForecastService
	insights  *services.InsightsService

	metrics      *metrics.Metrics
	logger       *zap.Logger
	secretKey    []byte
	cookieSecure bool
	tokenTTL     time.Duration
	clock        func() time.Time
	loginLimiter *attemptLimiter
}

type Options struct {
	SecretKey    string
	CookieSecure bool
	TokenTTL     time.Duration
	Clock        func() time.Time
}

func NewHandler(deps Dependencies, options Options) (*Handler, error) {
	if len(options.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if deps.Auth == nil || deps.Profiles == nil || deps.Cycles == nil || deps.Journal == nil || deps.Forecasts == nil || deps.Insights == nil {
		return nil, errors.New("all services are required")
	}
	if options.TokenTTL <= 0 {
		options.TokenTTL = defaultAuthTokenTTL
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	return &Handler{
		auth:         deps.Auth,
		profiles:     deps.Profiles,
		cycles:       deps.Cycles,
		journal:      deps.Journal,
		forecasts:    deps.Forecasts,
		insights:     deps.Insights,
		metrics:      deps.Metrics,
		logger:       logging.OrNop(deps.Logger).Named("api"),
		secretKey:    []byte(options.SecretKey),
		cookieSecure: options.CookieSecure,
		tokenTTL:     options.TokenTTL,
		clock:        options.Clock,
		loginLimiter: newAttemptLimiter(),
	}, nil
}

func (handler *Handler) now() time.Time {
	return handler.clock()
}
