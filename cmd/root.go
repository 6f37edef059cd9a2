package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	coreconfig "github.com/novareel/novareel/core/config"
	coreDB "github.com/novareel/novareel/core/database"
	domainCache "github.com/novareel/novareel/domains/cache"
	domainCatalog "github.com/novareel/novareel/domains/catalog"
	domainChat "github.com/novareel/novareel/domains/chat"
	domainGuess "github.com/novareel/novareel/domains/guess"
	domainPrefs "github.com/novareel/novareel/domains/prefs"
	domainRecommend "github.com/novareel/novareel/domains/recommend"
	domainTrivia "github.com/novareel/novareel/domains/trivia"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/infrastructure/valkey"
	"github.com/novareel/novareel/integrations/tmdb"
	"github.com/novareel/novareel/mediacache"
	"github.com/novareel/novareel/pkg/utils"
	"github.com/novareel/novareel/repository"
	"github.com/novareel/novareel/ui/websocket"
	"github.com/novareel/novareel/usecase"
)

var (
	// Usecases
	catalogUsecase   domainCatalog.ICatalogUsecase
	recommendUsecase domainRecommend.IRecommendUsecase
	guessUsecase     domainGuess.IGuessUsecase
	triviaUsecase    domainTrivia.ITriviaUsecase
	prefsUsecase     domainPrefs.IPrefsUsecase
	chatUsecase      domainChat.IChatUsecase
	cacheUsecase     domainCache.ICacheUsecase

	vkClient *valkey.Client
	serverID string

	flagPort     string
	flagDebug    bool
	flagDBDriver string
	flagDBName   string
)

var rootCmd = &cobra.Command{
	Use:   "novareel",
	Short: "Movie and TV discovery backend",
	Long:  `Catalog proxy, AI recommendations, image guessing and trivia over an HTTP API.`,
}

func init() {
	// Load .env before anything reads the environment
	_ = godotenv.Load()
	viper.AutomaticEnv()

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"",
		`database driver, sqlite or postgres | example: --db-driver=postgres`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBName,
		"db-name", "",
		"",
		`database file path (sqlite) or database name (postgres) | example: --db-name=storages/novareel.db`,
	)
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Flag overrides
	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}
	if flagDBName != "" {
		cfg.Database.Name = flagDBName
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}

	// Repositories
	itemsRepo := repository.NewMediaItemGormRepository(db)
	historyRepo := repository.NewHistoryGormRepository(db)
	cachedRepo := repository.NewCachedRecsGormRepository(db)
	triviaRepo := repository.NewTriviaGormRepository(db)
	for _, init := range []func(context.Context) error{
		itemsRepo.InitSchema,
		historyRepo.InitSchema,
		cachedRepo.InitSchema,
		triviaRepo.InitSchema,
	} {
		if err := init(ctx); err != nil {
			logrus.Fatalf("failed to migrate schema: %v", err)
		}
	}

	// Upstream catalog and model provider
	catalogClient := tmdb.NewClient(cfg.Catalog)
	provider, err := generation.NewProvider(cfg.AI)
	if err != nil {
		logrus.Fatalf("failed to build AI provider: %v", err)
	}

	// In-memory caches
	listStore := mediacache.NewStore[json.RawMessage]("lists", cfg.Cache.ListTTL)
	searchStore := mediacache.NewStore[json.RawMessage]("search", cfg.Cache.ListTTL)
	detailStore := mediacache.NewStore[json.RawMessage]("details", cfg.Cache.ListTTL)

	// Optional Valkey for multi-instance websocket fanout
	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:  cfg.Database.ValkeyAddress,
			Password: cfg.Database.ValkeyPassword,
			DB:       cfg.Database.ValkeyDB,
		})
		if err != nil {
			logrus.Errorf("[VALKEY] disabled, connection failed: %v", err)
			vkClient = nil
		}
	}

	// Usecases
	prefsUsecase = usecase.NewPrefsService(itemsRepo)
	catalogUsecase = usecase.NewCatalogService(catalogClient, listStore, searchStore, detailStore)
	recommendUsecase = usecase.NewRecommendService(
		provider,
		catalogClient,
		prefsUsecase,
		historyRepo,
		cachedRepo,
		websocket.Notifier{},
		cfg.Cache,
		cfg.AI,
	)
	guessUsecase = usecase.NewGuessService(provider, catalogClient, cfg.Catalog)
	triviaUsecase = usecase.NewTriviaService(provider, catalogClient, triviaRepo)
	chatUsecase = usecase.NewChatService(provider, catalogClient)
	cacheUsecase = usecase.NewCacheService(listStore, searchStore, detailStore, historyRepo, cfg.Cache)
	cacheUsecase.StartBackgroundCleanup(ctx)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of external connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}
	if sqlDB, err := coreDB.GetLegacyDB(); err == nil {
		_ = sqlDB.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
