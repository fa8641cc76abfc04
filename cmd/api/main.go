package main

import (
	"os"

	"github.com/yigit/unilink/internal/pkg/logger"
)

// @title UniLink API
// @version 1.0
// @description API for UniLink, the multi-tenant alumni networking platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@unilink.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
