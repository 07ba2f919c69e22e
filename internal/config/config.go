package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/model"
)

// Thresholds are the named decision thresholds of the detection engine. All
// of them must lie in [0,1].
type Thresholds struct {
	// Relevance: combined similarity below this marks the candidate Irrelevant.
	Relevance float64 `toml:"relevance"`
	// ContradictionHigh: contradiction score at or above this triggers Contradiction/Fabrication.
	ContradictionHigh float64 `toml:"contradiction_high"`
	// FactConsistencyLow: factual consistency below this can trigger FactualError.
	FactConsistencyLow float64 `toml:"fact_consistency_low"`
	// UnitMatch: a unit whose best cross-similarity is below this is missing/extra.
	UnitMatch float64 `toml:"unit_match"`
	// Context: minimum context similarity for numeric matches and value conflicts.
	Context float64 `toml:"context"`
	// ActionMatch: minimum phrase similarity for two actions to match.
	ActionMatch float64 `toml:"action_match"`
	// Omission: key-fact absence at or above this triggers Omission.
	Omission float64 `toml:"omission"`
	// ConflictDominance: share of value conflicts among missing value facts
	// at which mismatches are considered dominant.
	ConflictDominance float64 `toml:"conflict_dominance"`
	// Extra: extra-fact share at or above which a high-contradiction pair is Fabrication.
	Extra float64 `toml:"extra"`
	// NumericTolerance: relative tolerance for Money/Percentage/Number values.
	NumericTolerance float64 `toml:"numeric_tolerance"`
	// EdgeConsistent and EdgePartial are the lower bounds of the Consistent and
	// PartialHallucination edge bands.
	EdgeConsistent float64 `toml:"edge_consistent"`
	EdgePartial    float64 `toml:"edge_partial"`
}

type SimilarityWeights struct {
	Embedding float64 `toml:"embedding"`
	Lexical   float64 `toml:"lexical"`
	Overlap   float64 `toml:"overlap"`
}

type FactWeights struct {
	Money       float64 `toml:"money"`
	Date        float64 `toml:"date"`
	Percentage  float64 `toml:"percentage"`
	Number      float64 `toml:"number"`
	NamedEntity float64 `toml:"named_entity"`
	Action      float64 `toml:"action"`
}

// For returns the weight of a fact type.
func (w FactWeights) For(t model.FactType) float64 {
	switch t {
	case model.FactMoney:
		return w.Money
	case model.FactDate:
		return w.Date
	case model.FactPercentage:
		return w.Percentage
	case model.FactNumber:
		return w.Number
	case model.FactNamedEntity:
		return w.NamedEntity
	case model.FactAction:
		return w.Action
	}
	return 0
}

type WeightsConfig struct {
	Similarity SimilarityWeights `toml:"similarity"`
	Facts      FactWeights       `toml:"facts"`
}

type ConcurrencyConfig struct {
	Workers      int    `toml:"workers"`
	BatchTimeout string `toml:"batch_timeout"`
}

// Timeout parses BatchTimeout; an empty value means no timeout.
func (c ConcurrencyConfig) Timeout() (time.Duration, error) {
	if c.BatchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.BatchTimeout)
	if err != nil {
		return 0, eris.Wrapf(err, "config: parse batch_timeout %q", c.BatchTimeout)
	}
	return d, nil
}

type EvaluationConfig struct {
	CompareCandidates bool `toml:"compare_candidates"`
	// AnchorTime (YYYY-MM-DD) resolves relative dates such as "last year".
	AnchorTime string `toml:"anchor_time"`
	SaveGraph  bool   `toml:"save_graph"`
}

// Anchor parses AnchorTime. ok is false when no anchor is configured.
func (e EvaluationConfig) Anchor() (t time.Time, ok bool, err error) {
	if e.AnchorTime == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse("2006-01-02", e.AnchorTime)
	if err != nil {
		return time.Time{}, false, eris.Wrapf(err, "config: parse anchor_time %q", e.AnchorTime)
	}
	return t, true, nil
}

type GraphConfig struct {
	Damping       float64 `toml:"damping"`
	MaxIterations int     `toml:"max_iterations"`
	Convergence   float64 `toml:"convergence"`
}

// ProvidersConfig selects an implementation per provider contract: "local"
// for the built-in deterministic models or "llm" for the backend in [llm].
type ProvidersConfig struct {
	Embedder  string `toml:"embedder"`
	Lexical   string `toml:"lexical"`
	Extractor string `toml:"extractor"`
	NLI       string `toml:"nli"`
}

type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	EmbeddingModel    string  `toml:"embedding_model"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// PromptsConfig overrides the LLM prompt templates. Empty values use the built-in prompts.
type PromptsConfig struct {
	NLI        string `toml:"nli"`
	Extraction string `toml:"extraction"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	// Path is the badger directory; empty keeps the cache in memory.
	Path string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Thresholds  Thresholds        `toml:"thresholds"`
	Weights     WeightsConfig     `toml:"weights"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Evaluation  EvaluationConfig  `toml:"evaluation"`
	Graph       GraphConfig       `toml:"graph"`
	Providers   ProvidersConfig   `toml:"providers"`
	LLM         LLMConfig         `toml:"llm"`
	Prompts     PromptsConfig     `toml:"prompts"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
	Server      ServerConfig      `toml:"server"`
}

// Default returns the documented defaults. Every provider is local.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			Relevance:          0.05,
			ContradictionHigh:  0.70,
			FactConsistencyLow: 0.60,
			UnitMatch:          0.80,
			Context:            0.30,
			ActionMatch:        0.75,
			Omission:           0.50,
			ConflictDominance:  0.50,
			Extra:              0.50,
			NumericTolerance:   0.005,
			EdgeConsistent:     0.70,
			EdgePartial:        0.40,
		},
		Weights: WeightsConfig{
			Similarity: SimilarityWeights{Embedding: 0.5, Lexical: 0.3, Overlap: 0.2},
			Facts: FactWeights{
				Money:       0.25,
				Date:        0.20,
				Percentage:  0.20,
				Number:      0.10,
				NamedEntity: 0.15,
				Action:      0.10,
			},
		},
		Concurrency: ConcurrencyConfig{Workers: 4, BatchTimeout: "30s"},
		Graph:       GraphConfig{Damping: 0.85, MaxIterations: 100, Convergence: 1e-6},
		Providers: ProvidersConfig{
			Embedder:  ProviderLocal,
			Lexical:   ProviderLocal,
			Extractor: ProviderLocal,
			NLI:       ProviderLocal,
		},
		Log:    LogConfig{Level: "info", Format: "json"},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read file %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrap(err, "config: parse TOML")
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Memgraph.URI, "MEMGRAPH_URI")
	set(&c.Memgraph.User, "MEMGRAPH_USER")
	set(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	set(&c.Server.Port, "PORT")
	set(&c.Log.Level, "LOG_LEVEL")
}
