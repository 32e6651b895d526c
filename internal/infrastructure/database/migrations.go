package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunTenantMigrations aplica as migrações em um schema específico de tenant
func RunTenantMigrations(schema string) error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_SSL_MODE"),
		)
	}

	// Conectar ao banco para criar o schema antes de migrar
	db, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao banco: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(context.Background(), fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("erro ao criar schema: %v", err)
	}

	if _, err := db.Exec(context.Background(), fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
		return fmt.Errorf("erro ao configurar search_path: %v", err)
	}

	// URL das migrações incluindo o schema do tenant
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	dbURL = fmt.Sprintf("%s%ssearch_path=%s,public", dbURL, sep, schema)

	migrationsPath := filepath.Join("migrations", "tenant")
	sourceURL := fmt.Sprintf("file://%s", migrationsPath)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("erro ao criar migrate: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("erro ao aplicar migrações: %v", err)
	}

	log.Printf("Migrações aplicadas com sucesso no schema %s", schema)
	return nil
}
