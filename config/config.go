package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MidtransConfig menyimpan konfigurasi Midtrans Snap
type MidtransConfig struct {
	ServerKey     string
	ClientKey     string
	IsProduction  bool
	MerchantName  string
	MerchantEmail string
	MerchantPhone string
	SnapScriptURL string
}

// Config menyimpan seluruh konfigurasi aplikasi dari environment
type Config struct {
	Port        string
	BaseURL     string
	DeliveryFee int64
	Midtrans    MidtransConfig
}

// Load membaca konfigurasi dari environment variables
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DeliveryFee: getEnvInt64("DELIVERY_FEE", 15000),
		Midtrans: MidtransConfig{
			ServerKey:     os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey:     os.Getenv("MIDTRANS_CLIENT_KEY"),
			IsProduction:  os.Getenv("MIDTRANS_ENV") == "production",
			MerchantName:  getEnv("MIDTRANS_MERCHANT_NAME", "TakumaEat"),
			MerchantEmail: getEnv("MIDTRANS_MERCHANT_EMAIL", "order@takumaeat.com"),
			MerchantPhone: getEnv("MIDTRANS_MERCHANT_PHONE", "08123456789"),
			SnapScriptURL: getEnv("MIDTRANS_SNAP_URL", "https://app.sandbox.midtrans.com/snap/snap.js"),
		},
	}
	return cfg
}

// Validate memastikan konfigurasi Midtrans lengkap untuk pembayaran gateway
func (mc *MidtransConfig) Validate() error {
	if mc.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not set")
	}
	if mc.ClientKey == "" {
		return fmt.Errorf("MIDTRANS_CLIENT_KEY is not set")
	}
	if mc.MerchantName == "" {
		return fmt.Errorf("MIDTRANS_MERCHANT_NAME is not set")
	}
	if mc.MerchantEmail == "" {
		return fmt.Errorf("MIDTRANS_MERCHANT_EMAIL is not set")
	}
	if mc.MerchantPhone == "" {
		return fmt.Errorf("MIDTRANS_MERCHANT_PHONE is not set")
	}
	return nil
}

// InitDB membuka koneksi database sesuai DB_DRIVER (mysql atau sqlite)
func InitDB() (*gorm.DB, error) {
	driver := getEnv("DB_DRIVER", "mysql")

	switch driver {
	case "sqlite":
		path := getEnv("DB_PATH", "takumaeat.db")
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	case "mysql":
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			user := getEnv("DB_USER", "root")
			pass := os.Getenv("DB_PASSWORD")
			host := getEnv("DB_HOST", "127.0.0.1")
			port := getEnv("DB_PORT", "3306")
			name := getEnv("DB_NAME", "takumaeat")
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				user, pass, host, port, name)
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
