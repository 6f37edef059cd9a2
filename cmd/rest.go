package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreconfig "github.com/novareel/novareel/core/config"
	"github.com/novareel/novareel/ui/rest"
	"github.com/novareel/novareel/ui/rest/middleware"
	"github.com/novareel/novareel/ui/websocket"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the discovery API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Novareel Discovery API",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Request-ID",
	}))

	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	apiGroup.Use(middleware.Identity())

	rest.InitRestCatalog(apiGroup, catalogUsecase)
	rest.InitRestRecommend(apiGroup, recommendUsecase)
	rest.InitRestGuess(apiGroup, guessUsecase)
	rest.InitRestTrivia(apiGroup, triviaUsecase)
	rest.InitRestPrefs(apiGroup, prefsUsecase)
	rest.InitRestChat(apiGroup, chatUsecase)

	// Admin surface, gated by basic auth when credentials are configured
	adminGroup := apiGroup.Group("/")
	if len(cfg.App.BasicAuth) > 0 {
		account := make(map[string]string)
		for _, pair := range cfg.App.BasicAuth {
			parts := strings.Split(pair, ":")
			if len(parts) != 2 {
				logrus.Fatalln("Basic auth is not valid, please use this format <user>:<secret>")
			}
			account[parts[0]] = parts[1]
		}
		adminGroup.Use(basicauth.New(basicauth.Config{
			Users: account,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
		}))
	}
	rest.InitRestCache(adminGroup, cacheUsecase)

	// Websocket
	websocket.SetValkeyClient(vkClient, serverID)
	websocket.RegisterRoutes(apiGroup)
	go websocket.RunHub()

	// 404 for anything else under /api
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
