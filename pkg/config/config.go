package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr       string `toml:"listen_addr"`
	ModelPath        string `toml:"model_path"`
	CachePath        string `toml:"cache_path"`
	HazardDBPath     string `toml:"hazard_db_path"`
	OSRMBaseURL      string `toml:"osrm_base_url"`
	NominatimBaseURL string `toml:"nominatim_base_url"`
	StartOffline     bool   `toml:"start_offline"`
}

func Default() Config {
	return Config{
		ListenAddr:   ":5000",
		ModelPath:    "./data/route_predictor.json",
		CachePath:    "./data/routes_cache",
		HazardDBPath: "./data/hazards.db",
	}
}

// Load reads a TOML config file over the defaults. A missing path is
// not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
