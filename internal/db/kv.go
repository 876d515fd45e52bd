package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/quill/internal/errors"
)

// GetValue returns the raw value stored under key. ok is false when the key is absent.
func GetValue(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStorage("get "+key, err)
	}
	return value, true, nil
}

// PutValue stores value under key, replacing any previous value.
func PutValue(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return errors.NewStorage("put "+key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting an absent key is not an error.
func DeleteValue(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return errors.NewStorage("delete "+key, err)
	}
	return nil
}

// KV adapts a database handle to the byte store interface used by the history package.
type KV struct {
	DB *sql.DB
}

// NewKV wraps db.
func NewKV(db *sql.DB) *KV {
	return &KV{DB: db}
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	return GetValue(ctx, k.DB, key)
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return PutValue(ctx, k.DB, key, value)
}

func (k *KV) Remove(ctx context.Context, key string) error {
	return DeleteValue(ctx, k.DB, key)
}
