package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	storefrontmodule "github.com/goatlabs/storefront/modules/storefront"
	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/checkout"
	"github.com/goatlabs/storefront/pkg/config"
	"github.com/goatlabs/storefront/pkg/handoff"
	"github.com/goatlabs/storefront/pkg/httpserver"
	"github.com/goatlabs/storefront/pkg/lifecycle"
	"github.com/goatlabs/storefront/pkg/logger"
	"github.com/goatlabs/storefront/pkg/plancatalog"
	"github.com/goatlabs/storefront/pkg/redis"
	"github.com/goatlabs/storefront/pkg/session"
)

type appConfig struct {
	Env         string        `env:"STOREFRONT_ENV" envDefault:"development"`
	Origin      string        `env:"STOREFRONT_ORIGIN"`
	RedisURL    string        `env:"STOREFRONT_REDIS_URL"`
	SessionKey  string        `env:"STOREFRONT_SESSION_KEY" envDefault:"storefront:session"`
	SessionTTL  time.Duration `env:"STOREFRONT_SESSION_TTL" envDefault:"24h"`
	ScratchTTL  time.Duration `env:"STOREFRONT_SCRATCH_TTL" envDefault:"30m"`
	CatalogPath string        `env:"STOREFRONT_PLAN_CATALOG"`
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	var checkoutCfg checkout.Config
	if err := config.Load(&checkoutCfg); err != nil {
		return err
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, "storefront"),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	stores := []session.Store{session.NewMemoryStore("memory")}
	var readiness []func(context.Context) error
	if app.RedisURL != "" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		stores = append(stores, session.NewRedisStore(redisClient, app.SessionKey, app.SessionTTL))
		readiness = append(readiness, redis.Healthcheck(redisClient))
	}
	resolver := session.NewResolver(stores, session.WithLogger(log))

	client := billing.NewClient(checkoutCfg.APIBaseURL, billing.WithClientLogger(log))
	toss := billing.NewTossGateway(client)
	paypal := billing.NewPayPalGateway(client)

	catalog, err := buildCatalog(app, paypal, log)
	if err != nil {
		return err
	}

	var builder *handoff.Builder
	if app.Origin != "" {
		builder, err = handoff.NewBuilder(app.Origin)
		if err != nil {
			return err
		}
	}

	source := lifecycle.NewAPISource(client, lifecycle.WithAPISourceLogger(log))
	loader := lifecycle.NewLoader(source, lifecycle.WithLoaderLogger(log))
	scratch := checkout.NewMemoryScratch(app.ScratchTTL)

	orchestrator := checkout.New(checkoutCfg, checkout.Deps{
		Resolver: resolver,
		Catalog:  catalog,
		Cards:    toss,
		Auth:     &tossAuthFlow{gateway: toss},
		Plans:    loader,
		Scratch:  scratch,
		Handoff:  builder,
	}, checkout.WithLogger(log))

	manager := lifecycle.NewManager(loader, toss, paypal, client, lifecycle.WithManagerLogger(log))

	service := storefrontmodule.NewService(
		orchestrator,
		manager,
		loader,
		paypal,
		resolver,
		scratch,
		storefrontmodule.WithServiceLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(log))
	r.Get("/ready", httpserver.HealthCheckHandler(log, readiness...))
	r.Mount("/", service.Handle())

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// defaultPlans is the built-in fallback catalog, overridable by a YAML
// file and by the gateway plan listing at resolve time.
var defaultPlans = map[string]plancatalog.Entry{
	"basic": {Slug: "basic", Amount: 9900, OrderName: "Basic Plan"},
	"pro":   {Slug: "pro", Amount: 29900, OrderName: "Pro Plan"},
}

func buildCatalog(app appConfig, paypal *billing.PayPalGateway, log *slog.Logger) (*plancatalog.Gate, error) {
	fallback := defaultPlans
	if app.CatalogPath != "" {
		loaded, err := plancatalog.LoadYAMLFile(app.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load plan catalog: %w", err)
		}
		fallback = loaded
	}
	return plancatalog.NewGate(fallback,
		plancatalog.WithSource(&gatewayPlanSource{plans: paypal}),
		plancatalog.WithLogger(log),
	), nil
}

// tossAuthFlow announces the upcoming card registration to the backend.
// The hosted window itself is opened by the embedding page.
type tossAuthFlow struct {
	gateway *billing.TossGateway
}

func (f *tossAuthFlow) RequestBillingAuth(ctx context.Context, req checkout.AuthRequest) error {
	return f.gateway.PrepareBillingAuth(ctx, req.CustomerKey, billing.AuthSetupRequest{
		PlanSlug:      req.PlanSlug,
		Amount:        req.Amount,
		OrderName:     req.OrderName,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		SuccessURL:    req.SuccessURL,
		FailURL:       req.FailURL,
	})
}

// gatewayPlanSource overrides catalog amounts with the plan definitions
// published by the subscription gateway.
type gatewayPlanSource struct {
	plans *billing.PayPalGateway
}

func (s *gatewayPlanSource) Lookup(ctx context.Context, slug string) (plancatalog.Entry, error) {
	listed, err := s.plans.ListPlans(ctx)
	if err != nil {
		return plancatalog.Entry{}, err
	}
	for _, plan := range listed {
		if !strings.EqualFold(plan.Slug, slug) {
			continue
		}
		return plancatalog.Entry{
			Slug:      strings.ToLower(plan.Slug),
			Amount:    minorUnits(plan.Price, plan.Currency),
			OrderName: plan.Name,
		}, nil
	}
	return plancatalog.Entry{}, nil
}

// minorUnits converts a gateway price to the smallest currency unit. KRW
// has no minor unit; everything else uses two decimal places. Rounded, not
// truncated: 19.99 is 1999 minor units, not 1998.
func minorUnits(price float64, currencyCode string) int64 {
	if strings.EqualFold(currencyCode, "KRW") {
		return int64(math.Round(price))
	}
	return int64(math.Round(price * 100))
}
