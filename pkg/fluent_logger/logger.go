package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит конфигурацию для подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" в Docker
	Port      int    // обычно 24224
	TagPrefix string // общий префикс тегов, обычно имя сервиса
	// Async - отправка в фоне. Соединение устанавливается лениво, старт сервиса
	// не зависит от доступности Fluent Bit.
	Async   bool
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.TagPrefix == "" {
		return fmt.Errorf("fluentd tag prefix is required")
	}
	if c.Host == "" {
		return fmt.Errorf("fluentd host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("fluentd port %d is out of range", c.Port)
	}
	return nil
}

// NewClient создает клиента Fluent Bit. Пинга нет: ошибки соединения
// проявятся при первой отправке записи.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	client, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        cfg.Async,
		Timeout:      cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		MaxRetry:     3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return client, nil
}
