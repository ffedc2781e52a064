package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// MemorySource serves users from a map. It backs local runs and tests.
type MemorySource struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemorySource() *MemorySource {
	return &MemorySource{users: make(map[string]User)}
}

// Add stores a user with an already hashed password.
func (s *MemorySource) Add(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
}

func (s *MemorySource) GetUser(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

type secretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerSource reads users from one secret holding a JSON object of
// the form {"alice": {"hashed_password": "$2a$..."}}. The secret is read on
// every lookup so rotations apply without a restart.
type SecretsManagerSource struct {
	client   secretsAPI
	secretID string
}

func NewSecretsManagerSource(client secretsAPI, secretID string) *SecretsManagerSource {
	return &SecretsManagerSource{client: client, secretID: secretID}
}

// NewSecretsManagerSourceFromConfig builds the client from a loaded AWS config.
func NewSecretsManagerSourceFromConfig(cfg aws.Config, secretID string) *SecretsManagerSource {
	return NewSecretsManagerSource(secretsmanager.NewFromConfig(cfg), secretID)
}

type secretUser struct {
	HashedPassword string `json:"hashed_password"`
}

func (s *SecretsManagerSource) GetUser(ctx context.Context, username string) (*User, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", s.secretID, err)
	}

	var users map[string]secretUser
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &users); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", s.secretID, err)
	}

	u, ok := users[username]
	if !ok || u.HashedPassword == "" {
		return nil, ErrUserNotFound
	}
	return &User{Username: username, HashedPassword: u.HashedPassword}, nil
}

type userQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresSource reads active users from the users table.
type PostgresSource struct {
	db userQuerier
}

func NewPostgresSource(db userQuerier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Migrate creates the users table if it does not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Upsert stores a user with an already hashed password.
func (s *PostgresSource) Upsert(ctx context.Context, u User) error {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_active = TRUE`
	if _, err := s.db.Exec(ctx, query, u.Username, u.HashedPassword); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Username, err)
	}
	return nil
}

func (s *PostgresSource) GetUser(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT username, password_hash
		FROM users
		WHERE username = $1 AND is_active = TRUE`

	var u User
	err := s.db.QueryRow(ctx, query, username).Scan(&u.Username, &u.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user %s: %w", username, err)
	}
	return &u, nil
}
