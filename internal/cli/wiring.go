package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"qcm-challenge/internal/app"
	"qcm-challenge/internal/config"
	"qcm-challenge/internal/domain"
	"qcm-challenge/internal/infra/datasource"
	"qcm-challenge/internal/infra/memory"
	pgstore "qcm-challenge/internal/infra/postgres"
	redisstore "qcm-challenge/internal/infra/redis"
	"qcm-challenge/internal/infra/security"
	transport "qcm-challenge/internal/transport/http"
)

// backend holds the persistence handles built from config.
type backend struct {
	kv       app.KeyValueStore
	sessions app.SessionRepository
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.kv = memory.NewKVStore()
	case config.BackendRedis:
		if redisClient == nil {
			b.Close()
			return nil, fmt.Errorf("redis store selected but redis.addr is empty")
		}
		b.kv = redisstore.NewKVStore(redisClient, cfg.Store.Namespace)
	case config.BackendPostgres:
		if cfg.Postgres.URL == "" {
			b.Close()
			return nil, fmt.Errorf("postgres store selected but postgres.url is empty")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.kv = pgstore.NewKVStore(pool, cfg.Store.Namespace)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if redisClient != nil {
		b.sessions = redisstore.NewSessionStore(redisClient, cfg.Store.Namespace, redisTTL)
	} else {
		b.sessions = memory.NewSessionStore()
	}
	log.Printf("store backend: %s (namespace %q)", cfg.Store.Backend, cfg.Store.Namespace)
	return b, nil
}

// buildServices wires every use case over the backend and applies the data source overrides.
func buildServices(ctx context.Context, cfg config.Config, b *backend) (transport.Services, error) {
	questions := app.NewQuestionBank(b.kv, app.DefaultQuestions())
	poles := app.NewPoleRegistry(b.kv, app.DefaultPoles())
	if cfg.Data.Source != "" {
		overrides := datasource.NewLoader(cfg.Data.Source).Load(ctx)
		if overrides.Questions != nil {
			questions.SetDefaults(overrides.Questions)
			log.Printf("loaded %d questions from %s", len(overrides.Questions), cfg.Data.Source)
		}
		if overrides.Poles != nil {
			poles.SetDefaults(overrides.Poles)
			log.Printf("loaded %d poles from %s", len(overrides.Poles), cfg.Data.Source)
		}
	}

	gate := app.NewCompletionGate(b.kv)
	participants := app.NewParticipantLog(b.kv)

	site := app.DefaultSiteSettings()
	if cfg.Site.Title != "" {
		site.Title = cfg.Site.Title
	}
	if cfg.Site.PrimaryColor != "" {
		site.PrimaryColor = cfg.Site.PrimaryColor
	}

	hasher := security.NewBcryptHasher()
	hash := cfg.Admin.PasswordHash
	if hash == "" {
		log.Printf("admin.password_hash not set; hashing admin.password at startup")
		h, err := hasher.Hash(cfg.Admin.Password)
		if err != nil {
			return transport.Services{}, err
		}
		hash = h
	}
	secret := cfg.Admin.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Printf("admin.jwt_secret not set; admin tokens will not survive a restart")
	}
	tokens := security.NewJWTService(secret, config.TTLDuration(cfg.Admin.TokenTTL, 12*time.Hour))

	accounts := app.NewAccounts(b.kv, gate, app.AdminCredentials{
		Username:     cfg.Admin.Username,
		PasswordHash: hash,
	}, hasher, tokens)

	quiz := app.NewQuizService(b.sessions, questions, gate, participants, app.QuizSettings{
		Duration:     config.TTLDuration(cfg.Quiz.Duration, app.DefaultDuration),
		AdvanceDelay: config.TTLDuration(cfg.Quiz.AdvanceDelay, app.DefaultAdvanceDelay),
		AllowRestart: cfg.Quiz.AllowRestart,
		Retention:    config.TTLDuration(cfg.Quiz.Retention, app.DefaultRetention),
	})

	return transport.Services{
		Quiz:         quiz,
		Accounts:     accounts,
		Questions:    questions,
		Poles:        poles,
		Participants: participants,
		Site:         app.NewSiteSettingsStore(b.kv, site),
		Tokens:       tokens,
	}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// formatRecord renders one leaderboard line.
func formatRecord(rank int, r domain.ParticipantRecord) string {
	return fmt.Sprintf("%3d. %-24s %-20s %2d/%-2d %3d%%  %s",
		rank, r.Name, r.Pole, r.Score, r.MaxScore, r.Percentage, r.DateSubmitted.Format(time.DateTime))
}
