package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Advisor Configuration

[options]
# Annual risk-free rate used by the pricing model (0.07 = 7%)
risk_free_rate = 0.07
# Delta band for picking a call off a live chain
call_band_low = 0.25
call_band_high = 0.45
# Delta band for picking a put off a live chain
put_band_low = -0.45
put_band_high = -0.25
# Target delta for the model ladder when no chain is available
call_target_delta = 0.35
put_target_delta = -0.35
# Accept the first ladder strike within this distance of the target
tolerance = 0.15
# Number of synthetic strikes and their spacing in percent of spot
ladder_steps = 29
step_percent = 1.0

[nse]
# Fetch live option chains from NSE
enabled = true
base_url = "https://www.nseindia.com"
# Request timeout (e.g. "10s")
timeout = "10s"

[log]
# Log level: debug, info, warn, error
level = "info"
# Also write rotated logs to file_path
file = false

[store]
# Keep a journal of recommendations in SQLite
enabled = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
