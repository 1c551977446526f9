// Package config loads service configuration from a JSON file backend with
// VECINO_* environment-variable overrides.
package config

type Config struct {
	Server    ServerConfig
	Ollama    OllamaConfig
	Storage   StorageConfig
	Knowledge KnowledgeConfig
	Chat      ChatConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type StorageConfig struct {
	DataDir string
}

type KnowledgeConfig struct {
	// File is an optional JSON knowledge base; empty falls back to the
	// embedded default entries.
	File string
	// DocsDir is an optional directory of documents (txt/pdf/html) to
	// ingest alongside the knowledge file.
	DocsDir string
}

type ChatConfig struct {
	// GroundedOnly suppresses the generative fallback process-wide.
	GroundedOnly bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8000},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			// Model is empty on purpose: replies use the documented
			// placeholder until a real model is configured.
		},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/vecino/config.json, then applies VECINO_* environment
// overrides. A missing file is not an error; every key has a usable default.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
