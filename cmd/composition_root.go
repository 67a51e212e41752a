package cmd

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	adapterhttp "skycourier/internal/adapters/in/http"
	"skycourier/internal/adapters/out/fleet"
	"skycourier/internal/adapters/out/gcsbridge"
	"skycourier/internal/adapters/out/postgres"
	"skycourier/internal/adapters/out/postgres/idemrepo"
	"skycourier/internal/adapters/out/redis"
	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/core/application/ratelimit"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/application/usecases/queries"
	"skycourier/internal/core/domain/services"
	"skycourier/internal/core/ports"
	"skycourier/internal/jobs"
	"skycourier/internal/pkg/keylock"
)

// CompositionRoot wires adapters into use-case handlers. Handlers are
// created per request site; the shared pieces (db, locker, limiter, ledger,
// external clients) live here.
type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	locker      *keylock.KeyLock
	dispatcher  services.Dispatcher
	fleetClient ports.FleetClient
	publisher   ports.MissionPublisher
	limiter     *ratelimit.Limiter
	ledger      *idempotency.Ledger
	otpSecret   string
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB) (*CompositionRoot, error) {
	dispatcher, err := services.NewDispatcher(services.DefaultDispatchConfig())
	if err != nil {
		return nil, err
	}

	fleetClient, err := fleet.NewClient(configs.FleetAPIBaseURL)
	if err != nil {
		return nil, err
	}

	// no bridge configured means intents are logged and accepted locally
	var publisher ports.MissionPublisher = gcsbridge.NoopPublisher{}
	if configs.GCSBridgeBaseURL != "" {
		publisher, err = gcsbridge.NewPublisher(configs.GCSBridgeBaseURL)
		if err != nil {
			return nil, err
		}
	}

	counterStore, err := newCounterStore(configs)
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimit.NewLimiter(counterStore, map[string]ratelimit.RouteConfig{
		adapterhttp.RouteClassOrderCreate: {
			Limit:  configs.OrderCreateLimit,
			Window: configs.OrderCreateWindow,
		},
		adapterhttp.RouteClassTracking: {
			Limit:  configs.TrackingLimit,
			Window: configs.TrackingWindow,
		},
	})
	if err != nil {
		return nil, err
	}

	ledger, err := idempotency.NewLedger(
		idemrepo.NewGormIdempotencyStore(gormDB), configs.IdempotencyTTL)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		locker:      keylock.New(),
		dispatcher:  dispatcher,
		fleetClient: fleetClient,
		publisher:   publisher,
		limiter:     limiter,
		ledger:      ledger,
		otpSecret:   configs.OTPSecret,
	}, nil
}

// newCounterStore picks the rate-limit counter backend from configuration.
// Memory is the default so the service runs without redis on a single node.
func newCounterStore(configs Config) (ratelimit.CounterStore, error) {
	switch configs.RateLimitBackend {
	case "", RateLimitBackendMemory:
		return ratelimit.NewMemoryCounterStore(), nil
	case RateLimitBackendRedis:
		return redis.NewCounterStore(redis.NewClient(redis.Config{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
		}))
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", configs.RateLimitBackend)
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderJobUoWFactory = FuncOrderJobUoWFactory(func() commands.OrderJobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.locker)
}

func (c *CompositionRoot) CreateRunDispatchCommandHandler() commands.RunDispatchCommandHandler {
	var f commands.OrderJobUoWFactory = FuncOrderJobUoWFactory(func() commands.OrderJobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRunDispatchCommandHandler(f, c.fleetClient, c.dispatcher, c.locker)
}

func (c *CompositionRoot) CreateManualAssignCommandHandler() commands.ManualAssignCommandHandler {
	var f commands.OrderJobUoWFactory = FuncOrderJobUoWFactory(func() commands.OrderJobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewManualAssignCommandHandler(f, c.fleetClient, c.dispatcher, c.locker)
}

func (c *CompositionRoot) CreateSubmitMissionCommandHandler() commands.SubmitMissionCommandHandler {
	var f commands.OrderJobUoWFactory = FuncOrderJobUoWFactory(func() commands.OrderJobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSubmitMissionCommandHandler(f, c.publisher, c.locker)
}

func (c *CompositionRoot) CreateIngestMilestoneCommandHandler() commands.IngestMilestoneCommandHandler {
	var f commands.OrderJobUoWFactory = FuncOrderJobUoWFactory(func() commands.OrderJobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIngestMilestoneCommandHandler(f, c.locker)
}

func (c *CompositionRoot) CreateRecordProofCommandHandler() commands.RecordProofCommandHandler {
	var f commands.OrderProofUoWFactory = FuncOrderProofUoWFactory(func() commands.OrderProofUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordProofCommandHandler(f, c.locker, c.otpSecret)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderEventsQueryHandler() queries.GetOrderEventsQueryHandler {
	return queries.NewGetOrderEventsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTrackingQueryHandler() queries.GetTrackingQueryHandler {
	return queries.NewGetTrackingQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListJobsQueryHandler() queries.ListJobsQueryHandler {
	return queries.NewListJobsQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the echo-facing server over fresh handlers.
func (c *CompositionRoot) CreateHTTPServer() (*adapterhttp.Server, error) {
	createOrder := c.CreateCreateOrderCommandHandler()
	cancelOrder := c.CreateCancelOrderCommandHandler()
	runDispatch := c.CreateRunDispatchCommandHandler()
	manualAssign := c.CreateManualAssignCommandHandler()
	submitMission := c.CreateSubmitMissionCommandHandler()
	ingestMilestone := c.CreateIngestMilestoneCommandHandler()
	recordProof := c.CreateRecordProofCommandHandler()

	return adapterhttp.NewServer(adapterhttp.Handlers{
		CreateOrder:     &createOrder,
		CancelOrder:     &cancelOrder,
		RunDispatch:     &runDispatch,
		ManualAssign:    &manualAssign,
		SubmitMission:   &submitMission,
		IngestMilestone: &ingestMilestone,
		RecordProof:     &recordProof,

		GetOrder:       c.CreateGetOrderQueryHandler(),
		ListOrders:     c.CreateListOrdersQueryHandler(),
		GetOrderEvents: c.CreateGetOrderEventsQueryHandler(),
		GetTracking:    c.CreateGetTrackingQueryHandler(),
		ListJobs:       c.CreateListJobsQueryHandler(),
	}, c.limiter, c.ledger)
}

// CreateJobManager assembles the background jobs: the periodic dispatch pass
// and the idempotency ledger purge.
func (c *CompositionRoot) CreateJobManager(logger *slog.Logger) *jobs.JobManager {
	return jobs.NewJobManager(c.CreateRunDispatchCommandHandler(), c.ledger, logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOrderJobUoWFactory func() commands.OrderJobUoW

func (f FuncOrderJobUoWFactory) Create() commands.OrderJobUoW {
	return f()
}

type FuncOrderProofUoWFactory func() commands.OrderProofUoW

func (f FuncOrderProofUoWFactory) Create() commands.OrderProofUoW {
	return f()
}
