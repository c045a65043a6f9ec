// Package config loads the proxy runtime settings from an ini file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultListenAddr     = ":3128"
	DefaultConnectTimeout = 15 * time.Second
	DefaultSendTimeout    = 720 * time.Second
	DefaultRecvTimeout    = 720 * time.Second
)

// Config carries the settings the proxy reads once at startup.
type Config struct {
	// ListenAddr is the address the proxy accepts client connections on.
	ListenAddr string

	// AdminAddr serves /metrics and /healthz. Empty disables the listener.
	AdminAddr string

	// ConnectTimeout bounds the TCP dial to an origin.
	ConnectTimeout time.Duration

	// SendTimeout and RecvTimeout bound every individual socket write and
	// read on both the client and origin connections.
	SendTimeout time.Duration
	RecvTimeout time.Duration

	// Username and Password enable proxy Basic authentication when both
	// are non-empty.
	Username string
	Password string

	// LogFile is the rotated JSON log destination. Empty keeps logging
	// on the console only.
	LogFile string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ListenAddr:     DefaultListenAddr,
		ConnectTimeout: DefaultConnectTimeout,
		SendTimeout:    DefaultSendTimeout,
		RecvTimeout:    DefaultRecvTimeout,
	}
}

// AuthEnabled reports whether clients must present proxy credentials.
func (c *Config) AuthEnabled() bool {
	return c.Username != "" && c.Password != ""
}

// Load reads the ini file at path. A missing file is not an error: every
// setting falls back to its default so the proxy can run unconfigured.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	server := f.Section("server")
	cfg.ListenAddr = server.Key("listen").MustString(DefaultListenAddr)

	timeouts := f.Section("timeouts")
	cfg.ConnectTimeout = secs(timeouts.Key("tcp_connect_timeout_secs"), DefaultConnectTimeout)
	cfg.SendTimeout = secs(timeouts.Key("tcp_send_timeout"), DefaultSendTimeout)
	cfg.RecvTimeout = secs(timeouts.Key("tcp_recv_timeout"), DefaultRecvTimeout)

	auth := f.Section("auth")
	cfg.Username = auth.Key("basic_auth_username").String()
	cfg.Password = auth.Key("basic_auth_password").String()

	log := f.Section("log")
	cfg.LogFile = log.Key("file").String()

	admin := f.Section("admin")
	cfg.AdminAddr = admin.Key("listen").String()

	return cfg, nil
}

func secs(key *ini.Key, fallback time.Duration) time.Duration {
	return time.Duration(key.MustInt(int(fallback/time.Second))) * time.Second
}
