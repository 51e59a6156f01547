package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	discordrouter "github.com/guildtools/party-bot/internal/adapters/discord"
	"github.com/guildtools/party-bot/internal/adapters/timeparse"
	"github.com/guildtools/party-bot/internal/app/service"
	"github.com/guildtools/party-bot/internal/infra/config"
	"github.com/guildtools/party-bot/internal/infra/storage"
	"github.com/guildtools/party-bot/internal/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	logger.Info("database ready")

	parties := storage.NewPartyRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		logger.Fatal("discord session", zap.Error(err))
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	// Services
	admins := discordrouter.NewAdminChecker(s, cfg.AdminRoleIDs, logger)
	svc := service.NewPartyService(parties, service.NewPolicy(admins), timeparse.New(), logger)

	// Router renders the party messages, so it doubles as the presenter.
	r := discordrouter.NewRouter(s, cfg.DiscordGuild, svc, admins, logger)
	svc.SetPresenter(r)
	r.Handlers()

	if err := s.Open(); err != nil {
		logger.Fatal("discord open", zap.Error(err))
	}
	defer s.Close()
	logger.Info("connected", zap.String("user", s.State.User.Username), zap.String("id", s.State.User.ID))

	if err := r.Register(); err != nil {
		logger.Fatal("register commands", zap.Error(err))
	}
	logger.Info("commands registered", zap.String("guild", cfg.DiscordGuild))

	metrics.Register()
	metrics.Serve(cfg.HTTPAddr, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
