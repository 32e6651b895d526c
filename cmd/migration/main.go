package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

type migration struct {
	version string
	up      string
}

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}

	config := database.NewPostgresConfigFromEnv()
	db, err := database.NewPostgresDB(config)
	if err != nil {
		log.Fatalf("Erro ao conectar com o banco de dados: %v", err)
	}
	defer db.Close()

	// Migrações do schema público (tenants e filiais)
	if err := runPublicMigrations(db); err != nil {
		log.Fatalf("Erro ao executar migrações públicas: %v", err)
	}

	// Migrações de cada schema de tenant já provisionado
	if err := runAllTenantMigrations(db); err != nil {
		log.Fatalf("Erro ao executar migrações de tenant: %v", err)
	}

	log.Println("Migrações executadas com sucesso!")
}

func runPublicMigrations(db *database.PostgresDB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	conn, err := db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter conexão: %w", err)
	}
	defer conn.Release()

	if err := createMigrationsTable(ctx, conn); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return fmt.Errorf("erro ao verificar migrações aplicadas: %w", err)
	}

	migrations := []migration{
		{
			version: "001_create_tenants",
			up: `
				-- Tabela de tenants (redes de lojas)
				CREATE TABLE IF NOT EXISTS tenants (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					document VARCHAR(20) UNIQUE NOT NULL,
					status VARCHAR(20) NOT NULL,
					schema VARCHAR(50) NOT NULL,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_tenants_status ON tenants(status);
				CREATE INDEX IF NOT EXISTS idx_tenants_document ON tenants(document);
			`,
		},
		{
			version: "002_create_branches",
			up: `
				-- Tabela de filiais
				CREATE TABLE IF NOT EXISTS branches (
					id UUID PRIMARY KEY,
					tenant_id UUID NOT NULL REFERENCES tenants(id),
					name VARCHAR(255) NOT NULL,
					code VARCHAR(50),
					status VARCHAR(20) NOT NULL,
					is_main BOOLEAN NOT NULL DEFAULT false,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_branches_tenant_id ON branches(tenant_id);
				CREATE INDEX IF NOT EXISTS idx_branches_status ON branches(status);
			`,
		},
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		log.Printf("Aplicando migração %s...", m.version)

		if _, err := conn.Exec(ctx, m.up); err != nil {
			return fmt.Errorf("erro ao aplicar migração %s: %w", m.version, err)
		}

		if _, err := conn.Exec(ctx,
			"INSERT INTO public.migrations (version, applied_at) VALUES ($1, $2)",
			m.version, time.Now()); err != nil {
			return fmt.Errorf("erro ao registrar migração %s: %w", m.version, err)
		}
	}

	return nil
}

func createMigrationsTable(ctx context.Context, conn *pgxpool.Conn) error {
	_, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS public.migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func appliedMigrations(ctx context.Context, conn *pgxpool.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, "SELECT version FROM public.migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// runAllTenantMigrations aplica as migrações de tenant em cada schema já
// registrado na tabela pública de tenants
func runAllTenantMigrations(db *database.PostgresDB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter conexão: %w", err)
	}

	rows, err := conn.Query(ctx, "SELECT schema FROM public.tenants WHERE status = 'active'")
	if err != nil {
		conn.Release()
		return fmt.Errorf("erro ao listar tenants: %w", err)
	}

	var schemas []string
	for rows.Next() {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			rows.Close()
			conn.Release()
			return fmt.Errorf("erro ao ler schema: %w", err)
		}
		schemas = append(schemas, schema)
	}
	rows.Close()
	conn.Release()

	for _, schema := range schemas {
		log.Printf("Aplicando migrações no schema %s...", schema)
		if err := database.RunTenantMigrations(schema); err != nil {
			return fmt.Errorf("erro no schema %s: %w", schema, err)
		}
	}

	return nil
}
