package config

import "time"

// KumaConfig describes the upstream Uptime Kuma server the gateway keeps
// a session with. Credentials are passed through to the upstream login
// call as-is, nothing is stored locally.
type KumaConfig struct {
	URL            string        `mapstructure:"url" validate:"required,url"`
	Username       string        `mapstructure:"username" validate:"required"`
	Password       string        `mapstructure:"password" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	SnapshotMaxAge time.Duration `mapstructure:"snapshot_max_age"`
}

type BulkConfig struct {
	// Delay between consecutive upstream writes inside a bulk loop, so
	// one big request does not flood the shared session.
	Delay time.Duration `mapstructure:"delay"`
}

type Config struct {
	Port        int         `mapstructure:"port"`
	Env         string      `mapstructure:"env"`
	ServiceName string      `mapstructure:"service_name"`
	Kuma        *KumaConfig `mapstructure:"kuma" validate:"required"`
	Bulk        *BulkConfig `mapstructure:"bulk"`
}
