package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	orderflowx "github.com/pixelmart/order-agent/agent/agents/orderflow"
	commercex "github.com/pixelmart/order-agent/agent/commerce"
	contractx "github.com/pixelmart/order-agent/agent/contract"
	generatex "github.com/pixelmart/order-agent/agent/generate"
	historyx "github.com/pixelmart/order-agent/agent/history"
	sessionx "github.com/pixelmart/order-agent/agent/session"
	toolx "github.com/pixelmart/order-agent/agent/tool"
	configx "github.com/pixelmart/order-agent/pkg/config"
	_ "github.com/pixelmart/order-agent/pkg/logger/autoload"
	openrouterx "github.com/pixelmart/order-agent/pkg/openrouter"
	qstashx "github.com/pixelmart/order-agent/pkg/qstash"
)

type AppConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" split_words:"true"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	engineCfg := configx.MustNew[orderflowx.Config]("ENGINE")
	upstashCfg := configx.MustNew[sessionx.UpstashRedisConfig]("UPSTASH_REDIS")
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")

	ctx := context.Background()

	sessions := buildSessionStore(*upstashCfg)

	var (
		histStore historyx.Store
		orders    contractx.OrderService
		catalog   contractx.CatalogReader
	)
	if dsn := strings.TrimSpace(appCfg.DatabaseDSN); dsn != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db := bun.NewDB(sqldb, pgdialect.New())
		histStore = historyx.NewBunStore(db)
		repo := commercex.NewRepo(db)
		orders, catalog = repo, repo
		log.Info().Msg("using postgres for history and commerce")
	} else {
		histStore = historyx.NewMemoryStore()
		dev := commercex.NewDevService()
		orders, catalog = dev, dev
		log.Warn().Msg("no DATABASE_DSN configured, using in-memory dev stores")
	}

	var events contractx.EventPublisher
	if strings.TrimSpace(qstashCfg.URL) != "" {
		events = qstashx.MustNew(*qstashCfg)
	}

	mediator := toolx.NewMediator(orders, events)

	var chatModel einomodel.ToolCallingChatModel
	if openRouterCfg.Configured() {
		m, err := openRouterCfg.New(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("create chat model")
		}
		chatModel = m
	} else {
		log.Warn().Msg("no OPENROUTER_API_KEY configured, running in degraded canned-reply mode")
	}

	generator, err := generatex.New(ctx, chatModel, mediator, catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("create generator")
	}

	engine, err := orderflowx.New(sessions, histStore, generator, *engineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create engine")
	}

	runREPL(ctx, engine)
}

func buildSessionStore(cfg sessionx.UpstashRedisConfig) sessionx.Store {
	if strings.TrimSpace(cfg.URL) == "" {
		log.Warn().Msg("no UPSTASH_REDIS_URL configured, using in-memory session store")
		return sessionx.NewMemoryStore()
	}
	store, err := sessionx.NewUpstashRedisStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create upstash session store")
	}
	return store
}

// runREPL drives the engine from stdin for manual conversation testing.
func runREPL(ctx context.Context, engine *orderflowx.Engine) {
	sess, err := engine.CreateSession(ctx, "", "", "")
	if err != nil {
		log.Fatal().Err(err).Msg("create session")
	}
	fmt.Printf("session %s ready, type a message (ctrl-d to exit)\n> ", sess.Token)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Print("> ")
			continue
		}

		reply, err := engine.ProcessMessage(ctx, sess.Token, text, "", "")
		if err != nil {
			fmt.Printf("error: %v\n> ", err)
			continue
		}
		fmt.Printf("%s\n> ", reply.Text)
	}
}
