package config

// SystemDefaults returns the built-in configuration. A stock install talks
// to a scanning service on localhost and keeps history in the file backend.
func SystemDefaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
			Record:  "scan_history",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8787",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			SampleRate:     1.0,
			ServiceName:    "phishtrail",
			ServiceVersion: "dev",
		},
	}
}
