package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HelpdeskConfig holds credentials and pacing knobs for the upstream
// helpdesk API. BaseURL and APIKey are required; client construction
// fails fast when either is missing.
type HelpdeskConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key" validate:"required"`

	PageDelayMs       int `mapstructure:"page_delay_ms"`
	BackoffBaseMs     int `mapstructure:"backoff_base_ms"`
	BackoffCapMs      int `mapstructure:"backoff_cap_ms"`
	MaxRetries        int `mapstructure:"max_retries"`
	Concurrency       int `mapstructure:"concurrency"`
	StaggerMs         int `mapstructure:"stagger_ms"`
	ChunkPauseMs      int `mapstructure:"chunk_pause_ms"`
	RequestTimeoutSec int `mapstructure:"request_timeout_sec"`
}

type SyncConfig struct {
	DaysToSync          int  `mapstructure:"days_to_sync"`
	SafetyBufferMinutes int  `mapstructure:"safety_buffer_minutes"`
	IntervalMinutes     int  `mapstructure:"interval_minutes"`
	ScheduleEnabled     bool `mapstructure:"schedule_enabled"`
}

func (s *SyncConfig) SafetyBuffer() time.Duration {
	return time.Duration(s.SafetyBufferMinutes) * time.Minute
}

func (s *SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}
