package main

import (
	"database/sql"
	"flag"
	"os"

	"learnhub/internal/config"
	"learnhub/internal/logger"
	"learnhub/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	command := flag.String("command", "up", "goose command: up|down|status|version|redo|reset")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("Warning: no .env file found\n")
	}
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal().Msgf("Failed to set dialect: %v", err)
	}
	if err := goose.Run(*command, db, "."); err != nil {
		logger.Fatal().Msgf("Migration %s failed: %v", *command, err)
	}
	logger.Info().Str("command", *command).Msg("Migrations complete")
}
