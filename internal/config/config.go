package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chaos agent
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	RAG      RAGConfig      `mapstructure:"rag"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Rerank   RerankConfig   `mapstructure:"rerank"`
	Router   RouterConfig   `mapstructure:"router"`
	Sim      SimConfig      `mapstructure:"sim"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds session database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RAGConfig holds retrieval pipeline configuration
type RAGConfig struct {
	DBPath         string  `mapstructure:"db_path"`
	IndexType      string  `mapstructure:"index_type"`
	ChunkSize      int     `mapstructure:"chunk_size"`
	ChunkOverlap   int     `mapstructure:"chunk_overlap"`
	RecallK        int     `mapstructure:"recall_k"`
	TopN           int     `mapstructure:"top_n"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
	RewriteQuery   bool    `mapstructure:"rewrite_query"`
}

// LLMConfig holds LLM provider configuration. BaseURL is the
// OpenAI-compatible endpoint used for embeddings; OllamaURL is the native
// Ollama endpoint used for chat generation.
type LLMConfig struct {
	Provider       string `mapstructure:"provider"`
	BaseURL        string `mapstructure:"base_url"`
	OllamaURL      string `mapstructure:"ollama_url"`
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	LLMModel       string `mapstructure:"llm_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RerankConfig holds cross-encoder reranker configuration
type RerankConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RouterConfig holds intent routing keyword rules. Compute keywords are
// checked before chat keywords; the first match wins.
type RouterConfig struct {
	ComputeKeywords []string `mapstructure:"compute_keywords"`
	ChatKeywords    []string `mapstructure:"chat_keywords"`
}

// SimConfig holds numeric simulation defaults
type SimConfig struct {
	DefaultR        float64 `mapstructure:"default_r"`
	LogisticSteps   int     `mapstructure:"logistic_steps"`
	LorenzDuration  float64 `mapstructure:"lorenz_duration"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CHAOSAGENT")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/chaosagent.db")

	v.SetDefault("rag.db_path", "./data/rag.db")
	v.SetDefault("rag.index_type", "hnsw")
	v.SetDefault("rag.chunk_size", 1000)
	v.SetDefault("rag.chunk_overlap", 200)
	v.SetDefault("rag.recall_k", 30)
	v.SetDefault("rag.top_n", 5)
	v.SetDefault("rag.score_threshold", 0.3)
	v.SetDefault("rag.rewrite_query", false)

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.embedding_model", "nomic-embed-text")
	v.SetDefault("llm.llm_model", "llama3.1")
	v.SetDefault("llm.timeout_seconds", 120)

	v.SetDefault("rerank.base_url", "https://api.jina.ai/v1")
	v.SetDefault("rerank.api_key", "")
	v.SetDefault("rerank.model", "jina-reranker-v2-base-multilingual")
	v.SetDefault("rerank.timeout_seconds", 30)

	v.SetDefault("router.compute_keywords", []string{"计算指标", "simulate r=", "iterate r="})
	v.SetDefault("router.chat_keywords", []string{"你好", "你是谁", "介绍一下你自己", "介绍一下自己", "hi", "hello", "who are you"})

	v.SetDefault("sim.default_r", 3.5)
	v.SetDefault("sim.logistic_steps", 100)
	v.SetDefault("sim.lorenz_duration", 40)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
