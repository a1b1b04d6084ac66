package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/types"
  "github.com/medibot-org/medibot-backend/internal/utils"
  "github.com/medibot-org/medibot-backend/internal/logger"
)

type PostgresService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  //1) Get and Set Environment Variables
  log.Info("Attempting to load environment variables for Postgres now...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "medibot", log)
  log.Info("Environment variables loaded for Postgres :)")

  //2) Construct DSN From Environment Variables
  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  //3) Attempt DB Connection
  log.Info("Attempting to connect to Postgres DB now...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres DB", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres DB: %w", err)
  }
  log.Info("Successfully Connected to Postgres DB :)")

  //4) Enable uuid-ossp Extension
  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension :(", "error", err)
    return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
  }
  log.Info("uuid-ossp extension enabled or already exists :)")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Starting AutoMigrateAll for all GORM models now...")

  err := s.db.AutoMigrate(
    &types.User{},
    &types.RefreshToken{},
    &types.Chat{},
  )
  if err != nil {
    s.log.Error("AutoMigrateAll failed for Base Tables :(", "error", err)
    return err
  }
  s.log.Info("AutoMigrateAll completed successfully for Base Tables :)")

  s.log.Info("Configuring Foreign Key Relationships for Base Tables now...")
  for _, fk := range foreignKeys {
    // Dropping first keeps the migration re-runnable on restart.
    if err := s.db.Exec(fk.dropSQL()).Error; err != nil {
      return fmt.Errorf("failed to drop %s: %w", fk.name, err)
    }
    if err := s.db.Exec(fk.addSQL()).Error; err != nil {
      return fmt.Errorf("failed to add %s: %w", fk.name, err)
    }
  }
  s.log.Info("Successfully Added Foreign Key Relationships to Base Tables :)")

  return nil
}

// foreignKeys are the constraints AutoMigrateAll (re)creates. Every entry is
// dropped before being added so the migration stays idempotent.
var foreignKeys = []foreignKey{
  {table: "refresh_token", name: "fk_refresh_token_user_id", column: "user_id"},
  {table: "chat_detail", name: "fk_chat_detail_user_id", column: "user_id"},
}

type foreignKey struct {
  table  string
  name   string
  column string
}

func (fk foreignKey) dropSQL() string {
  return fmt.Sprintf(`ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q`, fk.table, fk.name)
}

func (fk foreignKey) addSQL() string {
  return fmt.Sprintf(`
      ALTER TABLE %q
      ADD CONSTRAINT %q
      FOREIGN KEY (%q)
      REFERENCES "user_profile"("id")
      ON DELETE CASCADE
  `, fk.table, fk.name, fk.column)
}

// EnsureConfidenceColumn adds the memoized-confidence column to chat rows
// created by installations that predate it. Additive and idempotent; runs once
// at startup so request handlers can assume the schema is current.
func (s *PostgresService) EnsureConfidenceColumn() error {
  s.log.Info("Ensuring confidence column exists on chat_detail now...")
  if err := s.db.Exec(`ALTER TABLE "chat_detail" ADD COLUMN IF NOT EXISTS "confidence" text`).Error; err != nil {
    s.log.Error("Failed to ensure confidence column on chat_detail :(", "error", err)
    return fmt.Errorf("failed to ensure confidence column: %w", err)
  }
  s.log.Info("Confidence column present on chat_detail :)")
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
