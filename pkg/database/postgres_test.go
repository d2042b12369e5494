package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-planner-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "planner",
		Password: "secret",
		Name:     "course_catalog",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5433 user=planner password=secret dbname=course_catalog sslmode=disable", dsn)
}
