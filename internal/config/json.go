package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON config files can use human
// readable strings like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string durations. It exists so the JSON file format stays stable even
// if the in-memory config layout changes.
type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Sync struct {
		ProbeInterval       Duration `json:"probe_interval"`
		PendingScanInterval Duration `json:"pending_scan_interval"`
		DebounceDelay       Duration `json:"debounce_delay"`
		FullSyncInterval    Duration `json:"full_sync_interval"`
	} `json:"sync,omitempty"`

	Server struct {
		HTTPAddress string `json:"http_address"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err = json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json config: %w", err)
	}

	return &StructuredConfig{
		App: App{Version: jsonCfg.App.Version},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Sync: Sync{
			ProbeInterval:       time.Duration(jsonCfg.Sync.ProbeInterval),
			PendingScanInterval: time.Duration(jsonCfg.Sync.PendingScanInterval),
			DebounceDelay:       time.Duration(jsonCfg.Sync.DebounceDelay),
			FullSyncInterval:    time.Duration(jsonCfg.Sync.FullSyncInterval),
		},
		Server: Server{HTTPAddress: jsonCfg.Server.HTTPAddress},
	}, nil
}
