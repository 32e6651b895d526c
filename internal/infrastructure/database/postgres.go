package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// PostgresConfig contém as configurações para conexão com o PostgreSQL
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int32
	MinConnections  int32
	MaxConnLifetime time.Duration
}

// NewPostgresConfigFromEnv cria uma nova configuração a partir de variáveis de ambiente
func NewPostgresConfigFromEnv() *PostgresConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNECTIONS", "10"))
	minConns, _ := strconv.Atoi(getEnv("DB_MIN_CONNECTIONS", "2"))
	maxLifetime, _ := strconv.Atoi(getEnv("DB_MAX_LIFETIME", "300"))

	return &PostgresConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            port,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		Database:        getEnv("DB_NAME", "pdv_multiloja"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConnections:  int32(maxConns),
		MinConnections:  int32(minConns),
		MaxConnLifetime: time.Duration(maxLifetime) * time.Second,
	}
}

// ConnectionString retorna a string de conexão para o PostgreSQL
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// PostgresDB gerencia a conexão com o PostgreSQL
type PostgresDB struct {
	pool   *pgxpool.Pool
	config *PostgresConfig
}

// NewPostgresDB cria uma nova conexão com o banco de dados PostgreSQL
func NewPostgresDB(cfg *PostgresConfig) (*PostgresDB, error) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		connString = cfg.ConnectionString()
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("erro ao analisar configuração do pool: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MinConns = cfg.MinConnections
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar pool de conexões: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("erro ao verificar conexão com o banco de dados: %w", err)
	}

	return &PostgresDB{pool: pool, config: cfg}, nil
}

// GetConnection retorna uma conexão do pool para uso
func (db *PostgresDB) GetConnection(ctx context.Context) (*pgxpool.Conn, error) {
	return db.pool.Acquire(ctx)
}

// GetTenantConnection retorna uma conexão configurada para o schema do
// tenant presente no contexto
func (db *PostgresDB) GetTenantConnection(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao adquirir conexão do pool: %w", err)
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)
	if tenantID == "" {
		if _, err = conn.Exec(ctx, "SET search_path TO public"); err != nil {
			conn.Release()
			return nil, fmt.Errorf("erro ao definir schema public: %w", err)
		}
		return conn, nil
	}

	var schema string
	err = conn.QueryRow(ctx,
		"SELECT schema FROM public.tenants WHERE id = $1",
		tenantID).Scan(&schema)

	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("erro ao buscar schema do tenant: %w", err)
	}

	if _, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("erro ao definir schema do tenant: %w", err)
	}

	return conn, nil
}

// CreateTenantSchema cria um novo schema para o tenant
func (db *PostgresDB) CreateTenantSchema(ctx context.Context, schema string) error {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("erro ao adquirir conexão do pool: %w", err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("erro ao criar schema: %w", err)
	}

	if _, err = conn.Exec(ctx, fmt.Sprintf("GRANT ALL ON SCHEMA %s TO %s", schema, db.config.User)); err != nil {
		return fmt.Errorf("erro ao configurar permissões do schema: %w", err)
	}

	return nil
}

// Close fecha o pool de conexões
func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Transaction executa uma função dentro de uma transação
func (db *PostgresDB) Transaction(ctx context.Context, txFunc func(tx pgx.Tx) error) error {
	conn, err := db.GetTenantConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return runInTx(ctx, conn, pgx.TxOptions{}, txFunc)
}

// maxTxRetries limita as tentativas de reexecução por conflito de
// serialização antes de propagar o erro ao chamador
const maxTxRetries = 5

// TransactionWithRetry executa a função como uma transação SERIALIZABLE e
// reexecuta a unidade inteira de leitura-modificação-escrita quando o banco
// detecta conflito de escrita concorrente no commit (SQLSTATE 40001) ou
// deadlock (40P01). O corpo da transação pode rodar mais de uma vez e por
// isso não pode ter efeitos colaterais não-reexecutáveis.
func (db *PostgresDB) TransactionWithRetry(ctx context.Context, txFunc func(tx pgx.Tx) error) error {
	conn, err := db.GetTenantConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}

	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		lastErr = runInTx(ctx, conn, opts, txFunc)
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}

	return fmt.Errorf("transação abortada após %d tentativas: %w", maxTxRetries, lastErr)
}

func runInTx(ctx context.Context, conn *pgxpool.Conn, opts pgx.TxOptions, txFunc func(tx pgx.Tx) error) error {
	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}

	if err := txFunc(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("erro ao fazer commit: %w", err)
	}

	return nil
}

// isRetryable identifica falhas de serialização e deadlocks, sinalizados
// pelo PostgreSQL para transações que devem ser reexecutadas
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// getEnv retorna o valor de uma variável de ambiente ou um valor padrão
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
