package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the incremental search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Categories lists the arXiv categories to query (e.g. "cs.CL").
	Categories []string `json:"categories" yaml:"categories"`

	// Query is the free-text topic query ANDed with the category filter.
	Query string `json:"query" yaml:"query"`

	// DaysBack bounds the submitted-date window to [today-DaysBack, today]
	// in UTC. Zero disables the date clause.
	DaysBack int `json:"days_back" yaml:"days_back"`

	// MaxResults caps how many NEW papers one run processes, independent
	// of how many results the date window contains.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SearchCeiling caps how many results are scanned while looking for
	// the resume point. It must be large enough to cover the date window.
	SearchCeiling int `json:"search_ceiling" yaml:"search_ceiling"`

	// PageSize is the per-request result count for API pagination.
	PageSize int `json:"page_size" yaml:"page_size"`

	// IncludeCrossListed selects cat: terms instead of primary_cat:.
	IncludeCrossListed bool `json:"include_cross_listed" yaml:"include_cross_listed"`

	// TitleOnly, AbstractOnly, and AuthorOnly scope the free-text query
	// to a single field. At most one should be set.
	TitleOnly    bool `json:"title_only" yaml:"title_only"`
	AbstractOnly bool `json:"abstract_only" yaml:"abstract_only"`
	AuthorOnly   bool `json:"author_only" yaml:"author_only"`

	// IDList restricts the search to explicit arXiv IDs when non-empty.
	IDList []string `json:"id_list,omitempty" yaml:"id_list,omitempty"`
}

// PDFConfig holds settings for PDF download and section extraction.
type PDFConfig struct {
	HTTPConfig `yaml:",inline"`

	// ExtractSections enables key-section extraction; when false only the
	// abstract is used.
	ExtractSections bool `json:"extract_sections" yaml:"extract_sections"`

	// MaxScanPages bounds how many pages are read when locating sections.
	MaxScanPages int `json:"max_scan_pages" yaml:"max_scan_pages"`

	// MaxChars bounds the raw-text fallback when no sections are found.
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// EmbeddingConfig holds settings for the embedding gateway.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the OpenAI-compatible embeddings endpoint.
	APIURL string `json:"api_url" yaml:"api_url"`

	// APIKey optionally authenticates the endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model optionally names the embedding model; some gateways route on
	// the endpoint path alone and ignore it.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// BatchSize is how many texts are sent per request.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Dimension is the vector width used for zero-vector substitution
	// when a batch fails.
	Dimension int `json:"dimension" yaml:"dimension"`
}

// ClusteringMethod selects the grouping strategy.
type ClusteringMethod string

const (
	MethodDBSCAN ClusteringMethod = "dbscan"
	MethodKMeans ClusteringMethod = "kmeans"
)

// ClusteringConfig holds settings for the clustering engine and the
// representative selector.
type ClusteringConfig struct {
	// Method is "dbscan" or "kmeans".
	Method ClusteringMethod `json:"method" yaml:"method"`

	// Eps is the DBSCAN neighborhood radius over cosine distance.
	Eps float64 `json:"eps" yaml:"eps"`

	// MinSamples is the DBSCAN minimum neighborhood size.
	MinSamples int `json:"min_samples" yaml:"min_samples"`

	// NClusters is the K-means cluster count (capped at the item count).
	NClusters int `json:"n_clusters" yaml:"n_clusters"`

	// TopClusters is how many of the largest clusters contribute
	// representative papers.
	TopClusters int `json:"top_clusters" yaml:"top_clusters"`
}

// ReviewConfig holds settings for the LLM review stage.
type ReviewConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the OpenAI-compatible base URL; /chat/completions is appended.
	APIURL string `json:"api_url" yaml:"api_url"`

	// APIKey authenticates the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the chat model identifier (e.g. "deepseek-v3").
	Model string `json:"model" yaml:"model"`

	// Temperature and TopP are sampling parameters.
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`

	// MaxOutputTokens bounds each completion.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// BatchSize is how many papers are scored per model call.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// RetryCount and RetryDelay control the fixed sleep-then-retry loop.
	RetryCount int           `json:"retry_count" yaml:"retry_count"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// ReportConfig holds settings for report assembly.
type ReportConfig struct {
	// OutputDir is where reports and their charts are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Timezone names the zone used for report timestamps (e.g. "Asia/Shanghai").
	Timezone string `json:"timezone" yaml:"timezone"`
}

// MailConfig holds SMTP delivery settings. Delivery is skipped when any
// required field is empty.
type MailConfig struct {
	SMTPServer string `json:"smtp_server" yaml:"smtp_server"`
	SMTPPort   int    `json:"smtp_port" yaml:"smtp_port"`
	Sender     string `json:"sender" yaml:"sender"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`

	// Receivers is a comma-separated recipient list.
	Receivers string `json:"receivers" yaml:"receivers"`
}

// HistoryConfig holds settings for the run-history store.
type HistoryConfig struct {
	// DataDir is the directory holding the SQLite database.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default row cap for history listings.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search"`
	PDF        PDFConfig        `json:"pdf" yaml:"pdf"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Clustering ClusteringConfig `json:"clustering" yaml:"clustering"`
	Review     ReviewConfig     `json:"review" yaml:"review"`
	Report     ReportConfig     `json:"report" yaml:"report"`
	Mail       MailConfig       `json:"mail" yaml:"mail"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
