package http

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	campaignUsecases "github.com/fundhive/fundhive/internal/application/campaign/usecases"
	"github.com/fundhive/fundhive/internal/application/listeners"
	notificationApp "github.com/fundhive/fundhive/internal/application/notification"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/fundhive/fundhive/internal/application/payment/usecases"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/infrastructure/auth"
	"github.com/fundhive/fundhive/internal/infrastructure/cache"
	"github.com/fundhive/fundhive/internal/infrastructure/config"
	"github.com/fundhive/fundhive/internal/infrastructure/email"
	infraPayment "github.com/fundhive/fundhive/internal/infrastructure/payment"
	"github.com/fundhive/fundhive/internal/infrastructure/repository"
	"github.com/fundhive/fundhive/internal/infrastructure/scheduler"
	"github.com/fundhive/fundhive/internal/interfaces/http/handlers"
	"github.com/fundhive/fundhive/internal/interfaces/http/middleware"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/db"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

// Container holds every long-lived dependency of the service. The HTTP
// server and the background worker both build one; the worker simply never
// mounts the routes.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	clock  biztime.Clock

	redisClient *redis.Client
	closers     []io.Closer

	// Repositories
	donationRepo *repository.DonationRepository
	campaignRepo *repository.CampaignRepository
	ledger       *repository.TransitionLedger
	activityRepo *repository.ActivityRepository
	mailJobRepo  *repository.MailJobRepository
	recipients   *repository.RecipientDirectory
	txManager    *db.TransactionManager

	// Payments
	registry     *paymentgateway.Registry
	locker       paymentUsecases.TransactionLocker
	transitioner *paymentUsecases.DonationTransitioner

	// Events and notifications
	mailGate      notificationApp.GroupGate
	mailScheduler *notificationApp.Scheduler
	mailTransport notificationApp.MailTransport
	mailRenderer  *notificationApp.Renderer
	dispatcher    *events.Dispatcher

	// Use cases
	handleWebhookUC  *paymentUsecases.HandleWebhookUseCase
	chargeUC         *paymentUsecases.ChargeUseCase
	getStatusUC      *paymentUsecases.GetPaymentStatusUseCase
	createDonationUC *paymentUsecases.CreateDonationUseCase
	changeStatusUC   *campaignUsecases.ChangeCampaignStatusUseCase
	publishUpdateUC  *campaignUsecases.PublishUpdateUseCase

	// Background jobs
	mailDeliveryJob  *notificationApp.MailDeliveryJob
	reconcileUC      *paymentUsecases.ReconcilePendingUseCase
	endExpiredUC     *campaignUsecases.EndExpiredCampaignsUseCase
	schedulerManager *scheduler.SchedulerManager

	// HTTP
	jwtService     *auth.JWTService
	authMiddleware *middleware.AuthMiddleware
	webhookLimiter *middleware.RateLimiter
	handlers       allHandlers
}

type allHandlers struct {
	payment  *handlers.PaymentHandler
	gateway  *handlers.GatewayHandler
	donation *handlers.DonationHandler
	campaign *handlers.CampaignHandler
	health   *handlers.HealthHandler
}

// NewContainer wires the service. The order matters: the dispatcher needs
// the mail scheduler, and the transitioner needs the dispatcher.
func NewContainer(database *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     database,
		cfg:    cfg,
		log:    log,
		clock:  biztime.System,
	}

	if err := c.initInfrastructure(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPayments(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initNotifications(); err != nil {
		c.Close()
		return nil, err
	}
	c.initUseCases()
	if err := c.initScheduler(); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

// Section 1: Redis, repositories and locks
func (c *Container) initInfrastructure() error {
	c.donationRepo = repository.NewDonationRepository(c.db)
	c.campaignRepo = repository.NewCampaignRepository(c.db)
	c.ledger = repository.NewTransitionLedger(c.db)
	c.activityRepo = repository.NewActivityRepository(c.db)
	c.mailJobRepo = repository.NewMailJobRepository(c.db)
	c.recipients = repository.NewRecipientDirectory(c.db)
	c.txManager = db.NewTransactionManager(c.db)

	if !c.cfg.Redis.Enabled {
		c.log.Warnw("redis disabled, using in-process locks and mail coalescing; run a single instance")
		c.locker = cache.NewMemoryTransactionLocker()
		c.mailGate = cache.NewMemoryGroupGate(c.clock)
		return nil
	}

	c.redisClient = redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	c.closers = append(c.closers, c.redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.log.Infow("redis connection established", "address", c.cfg.Redis.GetAddr())

	c.locker = cache.NewRedisTransactionLocker(c.redisClient, c.cfg.Payment.LockTTL, c.log)
	c.mailGate = cache.NewRedisGroupGate(c.redisClient)
	return nil
}

// Section 2: gateway discovery
func (c *Container) initPayments() error {
	c.registry = paymentgateway.NewRegistry(c.cfg.Gateway, c.log.Named("payment.registry"))
	if err := c.registry.Discover(infraPayment.BuiltinModules(), c.cfg.Payment.ManifestDir); err != nil {
		return fmt.Errorf("failed to discover payment gateways: %w", err)
	}
	return nil
}

// ReloadGateways rediscovers the compiled modules and the manifest directory.
func (c *Container) ReloadGateways() error {
	if err := c.registry.Reload(infraPayment.BuiltinModules(), c.cfg.Payment.ManifestDir); err != nil {
		return fmt.Errorf("failed to reload payment gateways: %w", err)
	}
	return nil
}

// Section 3: mail scheduling, listeners and the event dispatcher
func (c *Container) initNotifications() error {
	c.mailScheduler = notificationApp.NewScheduler(
		c.mailJobRepo,
		c.mailGate,
		c.cfg.Notifications.CoalesceWindow,
		c.log.Named("notification.scheduler"),
	)

	transport, closer, err := email.NewTransport(c.cfg.Email, c.cfg.AMQP, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize mail transport: %w", err)
	}
	c.mailTransport = transport
	c.closers = append(c.closers, closer)

	templates, err := notificationApp.DefaultTemplates()
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	c.mailRenderer = notificationApp.NewRenderer(templates...)

	table := listeners.NewBindingTable(
		listeners.NewActivityListener(c.activityRepo),
		listeners.NewMailListeners(c.mailScheduler, c.campaignRepo, c.donationRepo, c.log.Named("listeners.mail")),
	)
	c.dispatcher = events.NewDispatcher(table, c.log.Named("events"))
	return nil
}

// Section 4: use cases
func (c *Container) initUseCases() {
	c.transitioner = paymentUsecases.NewDonationTransitioner(
		c.donationRepo,
		c.campaignRepo,
		c.ledger,
		c.txManager,
		c.locker,
		c.dispatcher,
		c.log.Named("payment.transition"),
	)

	normalizer := paymentUsecases.NewWebhookNormalizer(c.registry, c.log.Named("payment.webhook"))
	c.handleWebhookUC = paymentUsecases.NewHandleWebhookUseCase(normalizer, c.transitioner, c.log.Named("payment.webhook"))
	c.chargeUC = paymentUsecases.NewChargeUseCase(c.registry, c.donationRepo, c.log.Named("payment.charge"))
	c.getStatusUC = paymentUsecases.NewGetPaymentStatusUseCase(c.registry, c.log.Named("payment.status"))
	c.createDonationUC = paymentUsecases.NewCreateDonationUseCase(
		c.donationRepo,
		c.campaignRepo,
		c.registry,
		c.dispatcher,
		c.log.Named("donation"),
	)

	c.changeStatusUC = campaignUsecases.NewChangeCampaignStatusUseCase(c.campaignRepo, c.dispatcher, c.log.Named("campaign"))
	c.publishUpdateUC = campaignUsecases.NewPublishUpdateUseCase(c.campaignRepo, c.dispatcher, c.log.Named("campaign"))

	c.mailDeliveryJob = notificationApp.NewMailDeliveryJob(
		c.mailJobRepo,
		c.recipients,
		c.mailRenderer,
		c.mailTransport,
		c.clock,
		c.cfg.Notifications,
		c.cfg.Email.AdminAddress,
		c.log.Named("notification.delivery"),
	)
	c.reconcileUC = paymentUsecases.NewReconcilePendingUseCase(
		c.donationRepo,
		c.registry,
		c.transitioner,
		c.clock,
		c.cfg.Payment.ReconcileAfter,
		c.cfg.Payment.ReconcileBatch,
		c.log.Named("payment.reconcile"),
	)
	c.endExpiredUC = campaignUsecases.NewEndExpiredCampaignsUseCase(c.campaignRepo, c.dispatcher, c.clock, c.log.Named("campaign.expiry"))
}

// Section 5: background jobs, registered but not started
func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := manager.RegisterMailDelivery(c.mailDeliveryJob, c.cfg.Notifications.PollInterval); err != nil {
		return fmt.Errorf("failed to register mail delivery: %w", err)
	}
	if err := manager.RegisterReconciliation(c.reconcileUC, c.cfg.Payment.ReconcileInterval); err != nil {
		return fmt.Errorf("failed to register reconciliation: %w", err)
	}
	if err := manager.RegisterCampaignExpiry(c.endExpiredUC, c.cfg.Payment.ExpiryInterval); err != nil {
		return fmt.Errorf("failed to register campaign expiry: %w", err)
	}
	c.schedulerManager = manager
	return nil
}

// Section 6: HTTP handlers and middlewares
func (c *Container) initHandlers() {
	c.jwtService = auth.NewJWTService(c.cfg.Auth.JWT)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtService, c.log.Named("auth"))
	if c.redisClient != nil && c.cfg.Server.WebhookRateLimit > 0 {
		c.webhookLimiter = middleware.NewRateLimiter(c.redisClient, c.cfg.Server.WebhookRateLimit, time.Minute, c.log)
	}

	checks := map[string]handlers.Pinger{}
	if sqlDB, err := c.db.DB(); err == nil {
		checks["database"] = sqlDB
	}
	if c.redisClient != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return c.redisClient.Ping(ctx).Err()
		})
	}

	c.handlers = allHandlers{
		payment:  handlers.NewPaymentHandler(c.handleWebhookUC, c.chargeUC, c.getStatusUC, c.log.Named("http.payment")),
		gateway:  handlers.NewGatewayHandler(c.registry, c, c.log.Named("http.gateway")),
		donation: handlers.NewDonationHandler(c.createDonationUC, c.log.Named("http.donation")),
		campaign: handlers.NewCampaignHandler(c.changeStatusUC, c.publishUpdateUC, c.log.Named("http.campaign")),
		health:   handlers.NewHealthHandler(checks),
	}
}

// Engine returns the gin engine; SetupRoutes must have been called.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Registry exposes the gateway catalog to the CLI.
func (c *Container) Registry() *paymentgateway.Registry {
	return c.registry
}

// Scheduler returns the background job manager.
func (c *Container) Scheduler() *scheduler.SchedulerManager {
	return c.schedulerManager
}

// Close stops background jobs and releases broker and cache connections.
func (c *Container) Close() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Warnw("failed to stop scheduler", "error", err)
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			c.log.Warnw("failed to close resource", "error", err)
		}
	}
	c.closers = nil
}
