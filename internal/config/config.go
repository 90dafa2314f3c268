// Package config loads the process configuration from the environment,
// once at startup. A .env file is honored when present so local runs
// don't need exported variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultListenAddr is used when LISTEN_ADDR is not set.
	DefaultListenAddr = ":8080"
	// DefaultCacheTTL matches the refresh interval of the original
	// deployment.
	DefaultCacheTTL = 20 * time.Second
	// DefaultQueryTimeout bounds each ServerQuery command round-trip.
	DefaultQueryTimeout = 10 * time.Second
)

// TS3 identifies the voice server and the query credentials used to
// enumerate it.
type TS3 struct {
	Host     string
	Port     uint16
	ServerID uint64
	Username string
	Password string
}

// Addr returns the host:port of the ServerQuery endpoint.
func (t TS3) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// Config is the full process configuration. It is read once; changes to
// the environment after startup have no effect.
type Config struct {
	TS3          TS3
	ListenAddr   string
	CacheTTL     time.Duration
	QueryTimeout time.Duration
}

// Load reads the configuration from the environment. Missing required
// variables or unparsable values are reported as one error per call.
func Load() (*Config, error) {
	// Optional; production deployments export variables directly.
	_ = godotenv.Load()

	host, err := requireEnv("TS3_HOST")
	if err != nil {
		return nil, err
	}
	port, err := requireUintEnv("TS3_PORT", 16)
	if err != nil {
		return nil, err
	}
	serverID, err := requireUintEnv("TS3_SERVER_ID", 64)
	if err != nil {
		return nil, err
	}
	user, err := requireEnv("TS3_USER")
	if err != nil {
		return nil, err
	}
	pass, err := requireEnv("TS3_PASS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TS3: TS3{
			Host:     host,
			Port:     uint16(port),
			ServerID: serverID,
			Username: user,
			Password: pass,
		},
		ListenAddr:   DefaultListenAddr,
		CacheTTL:     DefaultCacheTTL,
		QueryTimeout: DefaultQueryTimeout,
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if cfg.CacheTTL, err = optionalSecondsEnv("CACHE_TTL_SECONDS", DefaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = optionalSecondsEnv("QUERY_TIMEOUT_SECONDS", DefaultQueryTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s not set", key)
	}
	return v, nil
}

func requireUintEnv(key string, bits int) (uint64, error) {
	raw, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return v, nil
}

func optionalSecondsEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	secs, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || secs == 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}
