package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"albumrag/internal/catalog"
)

// LLMConfig configures the generation model used for classification and
// answering.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env,omitempty"`
	Temperature float64 `yaml:"temperature"`
}

// RemoteEmbedderConfig holds configuration for a provider-backed embedder.
type RemoteEmbedderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url,omitempty"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty"`
	BatchSize  int    `yaml:"batch_size"`
	MaxRetries int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Remote *RemoteEmbedderConfig `yaml:"remote,omitempty"`
}

// ChunkerConfig configures how prose documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk,omitempty"`
	OverlapSentences  int    `yaml:"overlap_sentences,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty"`
	Collection string `yaml:"collection"`
}

// SummarizerConfig configures the per-album ingest summaries.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// RouterConfig tunes query routing.
type RouterConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	KeywordOnly         bool    `yaml:"keyword_only"`
}

type RetrievalConfig struct {
	DefaultK int `yaml:"default_k"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs"`
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSecs) * time.Second
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AlbumSource points at the directory holding one album's section files.
type AlbumSource struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// CorpusConfig describes where the liner notes live and how files map to
// catalog sections.
type CorpusConfig struct {
	Root   string        `yaml:"root"`
	Albums []AlbumSource `yaml:"albums"`
	// FileSections maps a file stem to a section id. Stems not listed are
	// used as the section id directly.
	FileSections map[string]string `yaml:"file_sections"`
	// WholeSections are stored as a single chunk instead of being split.
	WholeSections []string `yaml:"whole_sections"`
	IngestOnStart bool     `yaml:"ingest_on_start"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Router      RouterConfig      `yaml:"router"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	// Catalog overrides the built-in album catalog when set.
	Catalog *catalog.Catalog `yaml:"catalog,omitempty"`
}

// BuildCatalog returns the configured catalog, or the built-in one.
func (c *AppConfig) BuildCatalog() (*catalog.Catalog, error) {
	if c.Catalog == nil {
		return catalog.Default(), nil
	}
	return catalog.New(*c.Catalog)
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults, applies environment overrides
// and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/albumrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/albumrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown implementation types and out-of-range values.
func (c *AppConfig) Validate() error {
	var errs []error
	if !oneOf(c.LLM.Provider, "ollama", "openai") {
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	switch c.Embedder.Type {
	case "tfidf":
	case "remote":
		if c.Embedder.Remote == nil {
			errs = append(errs, errors.New("embedder.remote: required for type remote"))
		} else if !oneOf(c.Embedder.Remote.Provider, "ollama", "openai") {
			errs = append(errs, fmt.Errorf("embedder.remote.provider: unknown provider %q", c.Embedder.Remote.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("embedder.type: unknown embedder %q", c.Embedder.Type))
	}
	switch c.Chunker.Type {
	case "recursive":
		if c.Chunker.ChunkSize <= 0 {
			errs = append(errs, errors.New("chunker.chunk_size: must be positive"))
		}
		if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
			errs = append(errs, fmt.Errorf("chunker.chunk_overlap: %d must be in [0, chunk_size)", c.Chunker.ChunkOverlap))
		}
	case "sentence":
	default:
		errs = append(errs, fmt.Errorf("chunker.type: unknown chunker %q", c.Chunker.Type))
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			errs = append(errs, errors.New("vector_store.qdrant.url: required for type qdrant"))
		}
	default:
		errs = append(errs, fmt.Errorf("vector_store.type: unknown vector store %q", c.VectorStore.Type))
	}
	if c.Summarizer.Type != "frequency" {
		errs = append(errs, fmt.Errorf("summarizer.type: unknown summarizer %q", c.Summarizer.Type))
	}
	if t := c.Router.ConfidenceThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("router.confidence_threshold: %v must be in (0, 1]", t))
	}
	if c.Retrieval.DefaultK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.default_k: %d must be at least 1", c.Retrieval.DefaultK))
	}
	if c.Server.RequestTimeoutSecs < 0 {
		errs = append(errs, errors.New("server.request_timeout_secs: must not be negative"))
	}
	for i, a := range c.Corpus.Albums {
		if a.Name == "" || a.Dir == "" {
			errs = append(errs, fmt.Errorf("corpus.albums[%d]: name and dir are required", i))
		}
	}
	return errors.Join(errs...)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "albumrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		LLM:         LLMConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: "http://localhost:11434"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "recursive", ChunkSize: 500, ChunkOverlap: 100},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 3},
		Router:      RouterConfig{ConfidenceThreshold: 0.7},
		Retrieval:   RetrievalConfig{DefaultK: 10},
		Server: ServerConfig{
			Addr:               ":8000",
			CORSOrigins:        []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"},
			RequestTimeoutSecs: 120,
		},
		Log: LogConfig{Level: "info"},
		Corpus: CorpusConfig{
			Root: "data",
			Albums: []AlbumSource{
				{Name: "The Link", Dir: "theLink"},
				{Name: "From Mars to Sirius", Dir: "fmts"},
			},
			FileSections: map[string]string{
				"critical_reception":      "reception_influence",
				"cultural_impact":         "cultural_context",
				"commercial_performances": "commercial_performance",
				"lyrical_themes":          "lyrics_themes",
				"metadata":                "basic_info",
			},
			WholeSections: []string{"tracklist", "basic_info"},
			IngestOnStart: true,
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.Type == "sentence" && cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if r := cfg.Embedder.Remote; r != nil {
		if r.Provider == "" {
			r.Provider = "ollama"
		}
		if r.Model == "" {
			switch r.Provider {
			case "openai":
				r.Model = "text-embedding-3-small"
			default:
				r.Model = "nomic-embed-text"
			}
		}
		if r.Provider == "openai" && r.APIKeyEnv == "" {
			r.APIKeyEnv = "OPENAI_API_KEY"
		}
		if r.BatchSize == 0 {
			r.BatchSize = 32
		}
		if r.MaxRetries == 0 {
			r.MaxRetries = 5
		}
	}
	if q := cfg.VectorStore.Qdrant; q != nil && q.Collection == "" {
		q.Collection = "albumrag"
	}
}

// applyEnvOverrides lets deployment environments point at their own
// services without editing the file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); v != "" {
		if cfg.LLM.Provider == "ollama" {
			cfg.LLM.BaseURL = v
		}
		if r := cfg.Embedder.Remote; r != nil && r.Provider == "ollama" {
			r.BaseURL = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := strings.TrimSpace(os.Getenv("ALBUMRAG_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
