package resilience

import (
	"strings"

	"opsroute/internal/platform/config"
)

// FromConfig reads CORE_BREAKER_LLM_*, CORE_BREAKER_DB_* and CORE_RETRY_* over the defaults
func FromConfig(root config.Conf) (settings []Settings, retry RetryPolicy) {
	core := root.Prefix("CORE_")
	for _, def := range []Settings{DefaultLLM(), DefaultDB()} {
		c := core.Prefix("BREAKER_" + strings.ToUpper(def.Name) + "_")
		settings = append(settings, Settings{
			Name:      def.Name,
			Threshold: c.MayInt("THRESHOLD", def.Threshold),
			Window:    c.MayDuration("WINDOW", def.Window),
			Cooldown:  c.MayDuration("COOLDOWN", def.Cooldown),
			Timeout:   c.MayDuration("TIMEOUT", def.Timeout),
		})
	}

	d := DefaultRetry()
	rc := core.Prefix("RETRY_")
	retry = RetryPolicy{
		Attempts: rc.MayInt("ATTEMPTS", d.Attempts),
		Initial:  rc.MayDuration("INITIAL", d.Initial),
		Max:      rc.MayDuration("MAX", d.Max),
	}
	return settings, retry
}
