package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/config"
	"cv-builder/internal/database"
	dbpostgres "cv-builder/internal/database/postgres"
	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/handler"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/delivery/http/routes"
	"cv-builder/internal/domain/authtoken"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/infrastructure/cache"
	"cv-builder/internal/infrastructure/mailer"
	"cv-builder/internal/infrastructure/mq"
	"cv-builder/internal/infrastructure/storage"
	"cv-builder/internal/pdf"
	"cv-builder/internal/pkg/jwt"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/repository"
	"cv-builder/internal/repository/memory"
	ucauth "cv-builder/internal/usecase/auth"
	"cv-builder/internal/usecase/export"
	ucprofile "cv-builder/internal/usecase/profile"
	ucsection "cv-builder/internal/usecase/section"
	useruc "cv-builder/internal/usecase/user"
	"cv-builder/internal/ws"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	exportStatusTTL = 24 * time.Hour
)

// Option overrides a dependency the container would otherwise build from
// config. Tests use these to swap in fakes.
type Option func(*options)

type options struct {
	store    *memory.Store
	renderer pdf.Renderer
	mailer   mailer.Mailer
	logger   *logger.Logger
}

// WithStore forces the in-memory repositories, ignoring the database config.
func WithStore(s *memory.Store) Option {
	return func(o *options) { o.store = s }
}

func WithRenderer(r pdf.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

func WithMailer(m mailer.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

type repositories struct {
	users    user.Repository
	sessions session.Repository
	tokens   authtoken.Repository
	profiles profile.Repository
	sections ucsection.Repositories
}

type Container struct {
	Config config.Config
	Logger *logger.Logger

	DB    database.DB
	Store *memory.Store
	Cache *cache.Redis

	Storage  *storage.Storage
	MQ       *mq.MQ
	Renderer pdf.Renderer
	Hub      *ws.Hub

	Auth     *ucauth.Service
	Users    *useruc.Service
	Profiles *ucprofile.Service
	Export   *export.Service
	Queue    *export.Queue
	Worker   *export.Worker

	Handlers    routes.Handlers
	Middlewares routes.Middlewares

	closers []func() error
}

func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}

	c := &Container{Config: cfg, Logger: log}

	c.Cache = cache.NewRedis(cfg.Redis, log)
	c.closers = append(c.closers, c.Cache.Close)

	repos, err := c.openRepositories(ctx, o.store)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if err := c.openInfrastructure(ctx, o); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.buildServices(repos, o.mailer)
	c.buildHTTP(repos)

	return c, nil
}

func (c *Container) openRepositories(ctx context.Context, store *memory.Store) (repositories, error) {
	if store == nil && c.Config.Database.Driver == DriverMemory {
		store = memory.NewStore()
	}

	if store != nil {
		c.Store = store
		c.Logger.Warn("using in-memory repositories, data is lost on exit")
		return repositories{
			users:    store.Users(),
			sessions: store.Sessions(),
			tokens:   store.AuthTokens(),
			profiles: store.Profiles(),
			sections: ucsection.Repositories{
				Experience:     store.Experiences(),
				Education:      store.Educations(),
				Skills:         store.Skills(),
				Languages:      store.Languages(),
				Certifications: store.Certifications(),
				SocialNetworks: store.SocialNetworks(),
			},
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, c.Config.Database, dbpostgres.WithLogger(c.Logger))
	if err != nil {
		return repositories{}, err
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)

	experience := repository.NewPostgresSectionRepository(db, repository.ExperienceSchema)
	education := repository.NewPostgresSectionRepository(db, repository.EducationSchema)
	skills := repository.NewPostgresSectionRepository(db, repository.SkillSchema)
	languages := repository.NewPostgresSectionRepository(db, repository.LanguageSchema)
	certifications := repository.NewPostgresSectionRepository(db, repository.CertificationSchema)
	socials := repository.NewPostgresSectionRepository(db, repository.SocialNetworkSchema)

	var sessions session.Repository = repository.NewPostgresSessionRepository(db)
	if c.Cache.Available() {
		sessions = repository.NewCachedSessionRepository(sessions, c.Cache, c.Config.Redis.TTL, c.Logger)
	}

	return repositories{
		users:    repository.NewPostgresUserRepository(db),
		sessions: sessions,
		tokens:   repository.NewPostgresAuthTokenRepository(db),
		profiles: repository.NewPostgresProfileRepository(db,
			experience, education, skills, languages, certifications, socials),
		sections: ucsection.Repositories{
			Experience:     experience,
			Education:      education,
			Skills:         skills,
			Languages:      languages,
			Certifications: certifications,
			SocialNetworks: socials,
		},
	}, nil
}

func (c *Container) openInfrastructure(ctx context.Context, o options) error {
	st, err := storage.New(ctx, c.Config.Storage)
	if err != nil {
		return err
	}
	if err := st.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", st.Bucket(), err)
	}
	c.Storage = st

	broker, err := mq.Open(ctx, c.Config.MQ)
	if err != nil {
		return err
	}
	c.MQ = broker
	c.closers = append(c.closers, broker.Close)

	if o.renderer != nil {
		c.Renderer = o.renderer
	} else {
		chrome := pdf.NewChrome(c.Config.PDF, c.Logger)
		c.Renderer = chrome
		c.closers = append(c.closers, func() error { chrome.Close(); return nil })
	}

	c.Hub = ws.NewHub(c.Logger)
	return nil
}

func (c *Container) buildServices(repos repositories, m mailer.Mailer) {
	cfg := c.Config
	if m == nil {
		m = mailer.New(cfg.Mail, c.Logger)
	}

	var throttle ucauth.Throttle
	if c.Cache.Available() {
		throttle = c.Cache
	}

	c.Auth = ucauth.NewService(ucauth.Deps{
		Users:       repos.users,
		Sessions:    repos.sessions,
		Tokens:      repos.tokens,
		JWT:         jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.RefreshExpiresIn),
		Mailer:      m,
		Throttle:    throttle,
		FrontendURL: cfg.App.FrontendURL,
		Logger:      c.Logger,
	})
	c.Users = useruc.NewService(repos.users, repos.sessions)
	c.Profiles = ucprofile.NewService(repos.profiles, repos.users, repos.sections, c.Logger)
	c.Export = export.NewService(repos.profiles, repos.sections, c.Renderer, c.Logger)

	var statuses export.StatusStore = export.NewMemoryStatusStore()
	if c.Cache.Available() {
		statuses = export.NewCacheStatusStore(c.Cache, exportStatusTTL)
	}
	c.Queue = export.NewQueue(c.MQ, statuses, c.Storage)
	c.Worker = export.NewWorker(export.WorkerDeps{
		Service:  c.Export,
		Profiles: repos.profiles,
		Statuses: statuses,
		Objects:  c.Storage,
		Notifier: c.Hub,
		Workers:  cfg.PDF.ExportWorkers,
		Logger:   c.Logger,
	})
}

func (c *Container) buildHTTP(repos repositories) {
	var redisPinger handler.Pinger
	if c.Cache.Available() {
		redisPinger = c.Cache
	}
	var dbPinger handler.Pinger = c.Store
	if c.DB != nil {
		dbPinger = c.DB
	}

	c.Handlers = routes.Handlers{
		Health:  handler.NewHealthHandler(dbPinger, redisPinger),
		Auth:    handler.NewAuthHandler(c.Auth),
		User:    handler.NewUserHandler(c.Users),
		Profile: handler.NewProfileHandler(c.Profiles),
		Catalog: handler.NewCatalogHandler(),
		PDF:     handler.NewPDFHandler(c.Export, c.Queue),
		Sections: []routes.SectionRoutes{
			{
				Path: string(section.KindExperience),
				Handler: handler.NewSectionHandler[section.Experience, dto.ExperienceRequest](
					ucsection.NewService(section.KindExperience, repos.sections.Experience, c.Profiles, c.Logger)),
			},
			{
				Path: string(section.KindEducation),
				Handler: handler.NewSectionHandler[section.Education, dto.EducationRequest](
					ucsection.NewService(section.KindEducation, repos.sections.Education, c.Profiles, c.Logger)),
			},
			{
				Path: string(section.KindSkill),
				Handler: handler.NewSectionHandler[section.Skill, dto.SkillRequest](
					ucsection.NewService(section.KindSkill, repos.sections.Skills, c.Profiles, c.Logger)),
			},
			{
				Path: string(section.KindLanguage),
				Handler: handler.NewSectionHandler[section.Language, dto.LanguageRequest](
					ucsection.NewService(section.KindLanguage, repos.sections.Languages, c.Profiles, c.Logger)),
			},
			{
				Path: string(section.KindCertification),
				Handler: handler.NewSectionHandler[section.Certification, dto.CertificationRequest](
					ucsection.NewService(section.KindCertification, repos.sections.Certifications, c.Profiles, c.Logger)),
			},
			{
				Path: string(section.KindSocialNetwork),
				Handler: handler.NewSectionHandler[section.SocialNetwork, dto.SocialNetworkRequest](
					ucsection.NewService(section.KindSocialNetwork, repos.sections.SocialNetworks, c.Profiles, c.Logger)),
			},
		},
		WS: ws.NewHandler(c.Hub, c.wsAuthenticate, c.Logger),
	}

	c.Middlewares = routes.Middlewares{
		Auth:      middleware.NewAuthMiddleware(c.Auth, c.Logger),
		Ownership: middleware.NewOwnershipMiddleware(repos.profiles),
		AuthLimit: middleware.NewRateLimiter(c.Config.RateLimit.AuthPerMinute, c.Config.RateLimit.AuthBurst),
	}
}

func (c *Container) wsAuthenticate(ctx context.Context, token string) (uuid.UUID, error) {
	p, err := c.Auth.Authenticate(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return p.User.ID, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
