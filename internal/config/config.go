// Package config загружает настройки CLI.
//
// Порядок применения (каждый следующий перекрывает предыдущий):
//   - значения по умолчанию
//   - YAML-файл ($GARDEN_CONFIG или ~/.config/garden/config.yaml)
//   - переменные окружения
//   - флаги командной строки
//
// Слои собирает viper; config set правит только указанный ключ в файле.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL — адрес backend'а по умолчанию.
const DefaultAPIURL = "http://192.168.101.14:8500"

// Режимы вывода.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Режимы цвета.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Ошибки конфигурации.
var (
	// ErrUnknownKey — ключ не поддерживается командой config set.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue — значение не проходит валидацию.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config — настройки CLI.
type Config struct {
	APIURL  string        `json:"api_url" yaml:"api_url" mapstructure:"api_url"`
	Output  string        `json:"output" yaml:"output" mapstructure:"output"`
	Color   string        `json:"color" yaml:"color" mapstructure:"color"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Watch   WatchConfig   `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// WatchConfig — настройки команды watch и её sink'ов.
type WatchConfig struct {
	// Schedule — cron-выражение или дескриптор ("@every 10s").
	Schedule string `json:"schedule" yaml:"schedule" mapstructure:"schedule"`

	// MetricsAddr — адрес для /metrics; пустой — не поднимать.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty" mapstructure:"metrics_addr"`

	// DBURL — DSN PostgreSQL для истории переходов; пустой — не писать.
	DBURL string `json:"db_url,omitempty" yaml:"db_url,omitempty" mapstructure:"db_url"`

	// AMQPURL — URL RabbitMQ для публикации переходов; пустой — не публиковать.
	AMQPURL string `json:"amqp_url,omitempty" yaml:"amqp_url,omitempty" mapstructure:"amqp_url"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		APIURL:  DefaultAPIURL,
		Output:  OutputTable,
		Color:   ColorAuto,
		Timeout: 30 * time.Second,
		Watch: WatchConfig{
			Schedule: "@every 10s",
		},
	}
}

// Path возвращает путь к файлу конфигурации.
func Path() string {
	if p := os.Getenv("GARDEN_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "garden", "config.yaml")
}

// settings — ключи конфигурации, их переменные окружения и флаги.
var settings = []struct {
	key  string
	env  string
	flag string
}{
	{"api_url", "GARDEN_API_URL", "api-url"},
	{"output", "GARDEN_OUTPUT", "output"},
	{"color", "GARDEN_COLOR", "color"},
	{"timeout", "GARDEN_TIMEOUT", "timeout"},
	{"watch.schedule", "GARDEN_WATCH_SCHEDULE", ""},
	{"watch.metrics_addr", "GARDEN_METRICS_ADDR", ""},
	{"watch.db_url", "DB_URL", ""},
	{"watch.amqp_url", "AMQP_URL", ""},
}

// Load собирает конфигурацию: значения по умолчанию, файл path,
// переменные окружения и изменённые флаги из flags (может быть nil).
// Отсутствующий файл не ошибка.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("output", def.Output)
	v.SetDefault("color", def.Color)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("watch.schedule", def.Watch.Schedule)
	v.SetDefault("watch.metrics_addr", "")
	v.SetDefault("watch.db_url", "")
	v.SetDefault("watch.amqp_url", "")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	for _, s := range settings {
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
		if s.flag == "" || flags == nil {
			continue
		}
		if f := flags.Lookup(s.flag); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", s.flag, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetInFile записывает в файл path одно значение key.
// Остальное содержимое файла сохраняется; значения по умолчанию
// и окружения в файл не попадают.
func SetInFile(path, key, value string) error {
	// Set проверяет ключ и значение.
	check := Default()
	if err := check.Set(key, value); err != nil {
		return err
	}
	if key == "api_url" {
		value = check.APIURL
	}

	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(doc.Content) == 0 {
		doc.Kind = yaml.DocumentNode
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parse config %s: top level is not a mapping", path)
	}
	setPath(root, strings.Split(key, "."), value)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// setPath устанавливает скаляр по пути ключей, создавая недостающие mapping'и.
func setPath(m *yaml.Node, path []string, value string) {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value != path[0] {
			continue
		}
		if len(path) == 1 {
			m.Content[i+1] = scalarNode(value)
			return
		}
		next := m.Content[i+1]
		if next.Kind != yaml.MappingNode {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			m.Content[i+1] = next
		}
		setPath(next, path[1:], value)
		return
	}

	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: path[0]}
	if len(path) == 1 {
		m.Content = append(m.Content, key, scalarNode(value))
		return
	}
	next := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, key, next)
	setPath(next, path[1:], value)
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// Keys возвращает ключи, поддерживаемые Set.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Set устанавливает значение по ключу ("api_url", "watch.schedule" и т.д.).
func (c *Config) Set(key, value string) error {
	switch key {
	case "api_url":
		c.APIURL = strings.TrimRight(value, "/")
	case "output":
		c.Output = value
	case "color":
		c.Color = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, value, err)
		}
		c.Timeout = d
	case "watch.schedule":
		c.Watch.Schedule = value
	case "watch.metrics_addr":
		c.Watch.MetricsAddr = value
	case "watch.db_url":
		c.Watch.DBURL = value
	case "watch.amqp_url":
		c.Watch.AMQPURL = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c.Validate()
}

// Validate проверяет значения конфигурации.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: output %q (use table, json or yaml)", ErrInvalidValue, c.Output)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color %q (use auto, always or never)", ErrInvalidValue, c.Color)
	}

	if c.APIURL == "" {
		return fmt.Errorf("%w: api_url is empty", ErrInvalidValue)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidValue)
	}
	return nil
}
