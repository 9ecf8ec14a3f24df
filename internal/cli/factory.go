package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/pkg/adapters/cel"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/adapters/jsonlogic"
	loamAdapter "github.com/aretw0/waypoint/pkg/adapters/loam"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/sqlstore"
	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/schema"
	"github.com/aretw0/waypoint/pkg/session"
)

// LoadDefinition reads a definition file, or a directory of step documents,
// with 'expr' (CEL) and 'logic' (JSONLogic) rules enabled, then validates it.
func LoadDefinition(path string) (*domain.Definition, error) {
	celc, err := cel.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("failed to init expression compiler: %w", err)
	}

	var def *domain.Definition
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		l, err := loamAdapter.Open(path,
			loamAdapter.WithCompiler(definition.LangExpr, celc.Compile),
			loamAdapter.WithCompiler(definition.LangLogic, jsonlogic.Compile),
		)
		if err != nil {
			return nil, err
		}
		if def, err = l.Load(context.Background()); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		def, err = definition.Load(path,
			definition.WithCompiler(definition.LangExpr, celc.Compile),
			definition.WithCompiler(definition.LangLogic, jsonlogic.Compile),
		)
		if err != nil {
			return nil, err
		}
	}
	if err := definition.Validate(def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := schema.FromDefinition(def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// NewWizard binds def with log hooks, plus metric hooks when m is set.
func NewWizard(def *domain.Definition, m *observability.Metrics, logger *slog.Logger) (*waypoint.Wizard, error) {
	hooks := observability.LogHooks(logger)
	if m != nil {
		hooks = hooks.Merge(m.Hooks())
	}
	return waypoint.New(def,
		waypoint.WithLogger(logger),
		waypoint.WithLifecycleHooks(hooks),
	)
}

// NewSessions picks the session backend: Redis with a distributed lock when
// RedisAddr is set, a SQL database when DatabaseURL is set, a session
// directory when SessionDir is set, process memory otherwise. Stores are
// wrapped with the configured redaction and encryption. close releases the
// backend.
func NewSessions(cfg config.Config, logger *slog.Logger) (mgr *session.Manager, close func() error, err error) {
	mws, err := StoreMiddleware(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.LockTTL)}

	switch {
	case cfg.RedisAddr != "":
		store := newRedisStore(cfg)
		opts = append(opts, session.WithLocker(redis.NewLocker(store.Client(), cfg.RedisPrefix)))
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "encrypted", cfg.EncryptionKey != "")
		return session.NewManager(middleware.Chain(store, mws...), opts...), store.Close, nil
	case cfg.DatabaseURL != "":
		store, err := sqlstore.Open(cfg.DatabaseURL, sqlstore.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sql session store", "encrypted", cfg.EncryptionKey != "")
		return session.NewManager(middleware.Chain(store, mws...), opts...), store.Close, nil
	case cfg.SessionDir != "":
		logger.Info("using file session store", "dir", cfg.SessionDir)
		store := middleware.Chain(file.New(cfg.SessionDir), mws...)
		return session.NewManager(store, opts...), func() error { return nil }, nil
	default:
		logger.Info("using in-memory session store")
		store := middleware.Chain(memory.NewStore(memory.WithTTL(cfg.SessionTTL)), mws...)
		return session.NewManager(store, opts...), func() error { return nil }, nil
	}
}

// OpenStore returns the configured store for offline session management.
func OpenStore(cfg config.Config) (ports.SessionStore, func() error, error) {
	mws, err := StoreMiddleware(cfg)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case cfg.RedisAddr != "":
		store := newRedisStore(cfg)
		return middleware.Chain(store, mws...), store.Close, nil
	case cfg.DatabaseURL != "":
		store, err := sqlstore.Open(cfg.DatabaseURL, sqlstore.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, nil, err
		}
		return middleware.Chain(store, mws...), store.Close, nil
	case cfg.SessionDir != "":
		return middleware.Chain(file.New(cfg.SessionDir), mws...), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("sessions live in process memory; set %sREDIS_ADDR, %sDATABASE_URL or %sSESSION_DIR to manage them", config.Prefix, config.Prefix, config.Prefix)
	}
}

// StoreMiddleware builds the store wrappers: redaction first, so masked
// values are what gets sealed.
func StoreMiddleware(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactFields) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.RedactFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	active, err := decodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid %sENCRYPTION_KEY: %w", config.Prefix, err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key #%d: %w", i+1, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, mw), nil
}

func decodeKey(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func newRedisStore(cfg config.Config) *redis.Store {
	return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		redis.WithPrefix(cfg.RedisPrefix),
		redis.WithTTL(cfg.SessionTTL),
	)
}

// NewRouter mounts the wizard handler and, when m is set, /metrics. Submitted
// values are checked against the field types of the definition.
func NewRouter(cfg config.Config, wiz *waypoint.Wizard, sessions *session.Manager, m *observability.Metrics, logger *slog.Logger) (http.Handler, error) {
	fields, err := schema.FromDefinition(wiz.Definition())
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Mount("/", httpAdapter.NewHandler(wiz, sessions,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithCookieName(cfg.CookieName),
		httpAdapter.WithValidator(fields.Check),
	))
	return r, nil
}

// NewMetrics registers the journey collectors on a fresh registry when
// metrics are enabled.
func NewMetrics(cfg config.Config) *observability.Metrics {
	if !cfg.Metrics {
		return nil
	}
	return observability.NewMetrics(prometheus.NewRegistry())
}
