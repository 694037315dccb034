package store

import (
	"time"

	"opsroute/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures the warehouse connection used for read-only queries
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot guard: pings before the pool is published
	ConnectAttempts uint
	PingTimeout     time.Duration
}

// CHConfig configures clickhouse connectivity for the decision audit
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// FromConfig reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from the root conf
// A backend is enabled when its ENABLED flag is set or, by default, when a DBURL is present
func FromConfig(root config.Conf, appName, role string) Config {
	pgc := root.Prefix("SERVICE_PGSQL_")
	chc := root.Prefix("SERVICE_CLICKHOUSE_")

	pgURL := pgc.MayString("DBURL", "")
	chURL := chc.MayString("DBURL", "")

	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:         pgc.MayBool("ENABLED", pgURL != "") && pgURL != "",
			URL:             pgURL,
			MaxConns:        int32(pgc.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:     pgc.MayInt("SLOW_MS", 500),
			LogSQL:          pgc.MayBool("LOG_SQL", false),
			ConnectAttempts: uint(pgc.MayInt("CONNECT_ATTEMPTS", 8)),
			PingTimeout:     pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled:    chc.MayBool("ENABLED", chURL != "") && chURL != "",
			URL:        chURL,
			ClientName: appName,
			ClientTag:  role,
		},
	}
}
