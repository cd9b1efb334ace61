package database

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/nexus-club/admin-api/pkg/config"
)

func TestDSNPrefersURL(t *testing.T) {
	cfg := config.DatabaseConfig{URL: "postgres://nexus@db:5432/nexus", SSLMode: "require", Host: "ignored"}
	assert.Equal(t, "postgres://nexus@db:5432/nexus?sslmode=require", DSN(cfg))

	cfg.URL = "postgres://nexus@db/nexus?connect_timeout=5"
	assert.Equal(t, "postgres://nexus@db/nexus?connect_timeout=5&sslmode=require", DSN(cfg))

	cfg.URL = "postgres://nexus@db/nexus?sslmode=disable"
	assert.Equal(t, "postgres://nexus@db/nexus?sslmode=disable", DSN(cfg))
}

func TestDSNFromParts(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "nexus_club", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=nexus_club sslmode=disable", DSN(cfg))
}

func TestErrorClassification(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "members_email_key"}
	assert.True(t, IsUniqueViolation(fmt.Errorf("create member: %w", unique)))
	assert.False(t, IsInvalidInput(unique))

	assert.True(t, IsInvalidInput(&pq.Error{Code: "23514"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom")))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
