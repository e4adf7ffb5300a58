package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"farm-platform/internal/infrastructure/config"
)

func TestConnect_Empty(t *testing.T) {
	db, err := Connect(context.Background(), config.DBConfig{DSN: ""})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if db != nil {
		t.Error("expected nil db for empty DSN")
	}
}

func TestPing(t *testing.T) {
	if err := Ping(context.Background(), nil); err == nil {
		t.Error("expected error for nil db")
	}

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()
	mock.ExpectPing()

	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
