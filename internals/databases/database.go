package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dormitory_backend/internals/configs"
	"dormitory_backend/internals/features/housing/model"
)

var (
	DB         *gorm.DB // housing DB (read/write)
	RegistryDB *gorm.DB // student registry (read-only)
)

// HousingDSN membangun DSN postgres + statement_timeout dari DB_*.
func HousingDSN() string {
	return postgresDSN("DB", "dormitory")
}

// RegistryDialector memilih driver registry dari REGISTRY_DB_DRIVER (postgres|mysql).
// REGISTRY_DB_DSN, kalau diisi, dipakai apa adanya.
func RegistryDialector() (gorm.Dialector, error) {
	driver := strings.ToLower(configs.GetEnv("REGISTRY_DB_DRIVER", "postgres"))
	dsn := configs.GetEnv("REGISTRY_DB_DSN")

	switch driver {
	case "postgres", "postgresql":
		if dsn == "" {
			dsn = postgresDSN("REGISTRY_DB", "dormitory-registry")
		}
		return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), nil
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
				configs.GetEnv("REGISTRY_DB_USER"),
				configs.GetEnv("REGISTRY_DB_PASSWORD"),
				configs.GetEnv("REGISTRY_DB_HOST", "127.0.0.1"),
				configs.GetEnv("REGISTRY_DB_PORT", "3306"),
				configs.GetEnv("REGISTRY_DB_NAME"),
			)
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported REGISTRY_DB_DRIVER %q", driver)
	}
}

func postgresDSN(prefix, appName string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(configs.GetEnv(prefix+"_USER"), configs.GetEnv(prefix+"_PASSWORD")),
		Host:   configs.GetEnv(prefix+"_HOST", "127.0.0.1") + ":" + configs.GetEnv(prefix+"_PORT", "5432"),
		Path:   "/" + configs.GetEnv(prefix+"_NAME"),
	}
	q := url.Values{}
	q.Set("sslmode", configs.GetEnv(prefix+"_SSLMODE", "disable"))
	q.Set("application_name", appName)
	q.Set("options", "-c statement_timeout=3000")
	u.RawQuery = q.Encode()
	return u.String()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         configs.NewGormLogger(logrus.NewEntry(logrus.StandardLogger())),
		TranslateError: true,
	}
}

func ConnectDB() {
	logrus.Info("🔌 Koneksi ke PostgreSQL (housing)...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  HousingDSN(),
		PreferSimpleProtocol: true, // aman untuk PgBouncer (transaction pooling)
	}), gormConfig())
	if err != nil {
		logrus.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	logrus.Info("✅ DB connected.")
}

func ConnectRegistryDB() {
	logrus.Info("🔌 Koneksi ke registry mahasiswa...")

	dialector, err := RegistryDialector()
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		logrus.Fatalf("❌ Gagal konek registry DB: %v", err)
	}
	RegistryDB = db
	logrus.WithField("driver", dialector.Name()).Info("✅ Registry DB connected.")
}

// Migrate hanya menyentuh tabel housing; skema registry dikelola di luar.
func Migrate(db *gorm.DB) error {
	if !configs.GetEnvBool("DB_AUTO_MIGRATE", true) {
		logrus.Info("auto-migrate dimatikan (DB_AUTO_MIGRATE=false)")
		return nil
	}
	return db.AutoMigrate(
		&model.DormitoryModel{},
		&model.RoomModel{},
		&model.ApplicationModel{},
		&model.ProcessingRunModel{},
	)
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Warnf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries(dbs ...*gorm.DB) {
	// jalankan ringan supaya pool "keisi" & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		for _, db := range dbs {
			if err := Ping(context.Background(), db); err != nil {
				logrus.Warnf("warm-up ping err: %v", err)
			}
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func Close(dbs ...*gorm.DB) {
	for _, db := range dbs {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
