// Package config loads environment-driven configuration structs.
//
// A .env file in the working directory is read on first use (missing files
// are ignored) and struct fields are populated with caarlos0/env tags:
//
//	type Config struct {
//		Workers int `env:"FACTORIZER_WORKERS" envDefault:"8"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Each configuration type is loaded once per process; later calls to Load
// with the same type copy the cached value.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	dotenvErr  error

	loaded sync.Map // reflect.Type -> value of that type
)

func loadDotenv() error {
	dotenvOnce.Do(func() {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			dotenvErr = fmt.Errorf("config: load .env: %w", err)
		}
	})
	return dotenvErr
}

// Parse fills dst from the environment without consulting or updating the
// per-type cache.
func Parse[T any](dst *T) error {
	if err := loadDotenv(); err != nil {
		return err
	}
	if err := env.Parse(dst); err != nil {
		return fmt.Errorf("config: parse %T: %w", *dst, err)
	}
	return nil
}

// Load fills dst from the environment, caching the result per type.
func Load[T any](dst *T) error {
	key := reflect.TypeFor[T]()
	if v, ok := loaded.Load(key); ok {
		*dst = v.(T)
		return nil
	}

	if err := Parse(dst); err != nil {
		return err
	}

	v, _ := loaded.LoadOrStore(key, *dst)
	*dst = v.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for process startup.
func MustLoad[T any](dst *T) {
	if err := Load(dst); err != nil {
		panic(err)
	}
}
