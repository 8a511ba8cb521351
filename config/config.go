package config

import (
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Ledger struct {
		AnchorHMACKey         string // ключ HMAC-штампа якорей; пусто — штампы отключены
		OpsEmail              string // адрес оператора для уведомлений о сверках и расхождениях
		AnchorIntervalHours   int    // период планировщика системных якорей
		AnchorMinTransactions int64  // сколько транзакций должно накопиться после якоря
	}
}

// NewConfig создает новый экземпляр конфигурации из переменных окружения
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ledger_db")

	// Настройки JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")

	// Настройки леджера
	v.SetDefault("LEDGER_ANCHOR_HMAC_KEY", "")
	v.SetDefault("LEDGER_OPS_EMAIL", "ops@example.com")
	v.SetDefault("LEDGER_ANCHOR_INTERVAL_HOURS", 24)
	v.SetDefault("LEDGER_ANCHOR_MIN_TRANSACTIONS", 50)

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")
	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")
	cfg.Ledger.AnchorHMACKey = v.GetString("LEDGER_ANCHOR_HMAC_KEY")
	cfg.Ledger.OpsEmail = v.GetString("LEDGER_OPS_EMAIL")
	cfg.Ledger.AnchorIntervalHours = v.GetInt("LEDGER_ANCHOR_INTERVAL_HOURS")
	cfg.Ledger.AnchorMinTransactions = v.GetInt64("LEDGER_ANCHOR_MIN_TRANSACTIONS")

	return cfg, nil
}
