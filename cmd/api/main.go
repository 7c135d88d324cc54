package main

import (
	"context"
	"os"

	"github.com/yigit/mobility/internal/pkg/logger"
	"github.com/yigit/mobility/internal/server"
)

// @title Mobility Learning Agreement API
// @version 1.0
// @description Approval workflow of study-abroad learning agreements: students file dossiers, major heads review them, the international office signs them off.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
