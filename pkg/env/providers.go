package env

import "time"

// Server environment variables.
var (
	Host = RegisterStringVar(
		"REPLAY_HOST",
		"0.0.0.0",
		"Address the HTTP server binds to.",
		ComponentServer,
	)

	Port = RegisterIntVar(
		"REPLAY_PORT",
		8000,
		"Port the HTTP server listens on.",
		ComponentServer,
	)

	LogLevel = RegisterStringVar(
		"REPLAY_LOG_LEVEL",
		"info",
		"Minimum log level (debug, info, warn, error).",
		ComponentServer,
	)

	Environment = RegisterStringVar(
		"REPLAY_ENV",
		"production",
		"Deployment environment; 'development' enables human-readable logs.",
		ComponentServer,
	)

	AuditLogEnabled = RegisterBoolVar(
		"REPLAY_AUDIT_LOG_ENABLED",
		true,
		"When false, disable the per-request audit log middleware.",
		ComponentServer,
	)

	TracingEnabled = RegisterBoolVar(
		"REPLAY_TRACING_ENABLED",
		false,
		"When true, export OpenTelemetry traces for HTTP requests.",
		ComponentServer,
	)

	ShutdownTimeout = RegisterDurationVar(
		"REPLAY_SHUTDOWN_TIMEOUT",
		15*time.Second,
		"How long to wait for in-flight requests during graceful shutdown.",
		ComponentServer,
	)
)

// Storage environment variables.
var (
	BucketName = RegisterStringVar(
		"REPLAY_BUCKET_NAME",
		"session-replays",
		"Cloud Storage bucket holding session event blobs.",
		ComponentStorage,
	)

	ServiceAccountKeyPath = RegisterStringVar(
		"REPLAY_SERVICE_ACCOUNT_KEY_PATH",
		"",
		"Path to the Google Cloud service account JSON key file. When empty, Application Default Credentials are used.",
		ComponentStorage,
	)

	MaxSessionDuration = RegisterDurationVar(
		"REPLAY_MAX_SESSION_DURATION",
		60*time.Minute,
		"Recordings spanning more than this are refused on ingest.",
		ComponentStorage,
	)
)

// Intelligence (LLM analysis) environment variables.
var (
	LLMProvider = RegisterStringVar(
		"REPLAY_LLM_PROVIDER",
		"openai",
		"LLM provider for event analysis (openai or anthropic).",
		ComponentIntelligence,
	)

	LLMModel = RegisterStringVar(
		"REPLAY_LLM_MODEL",
		"",
		"Model override for the configured LLM provider. Empty uses the provider default.",
		ComponentIntelligence,
	)

	OpenAIAPIKey = RegisterStringVar(
		"OPENAI_API_KEY",
		"",
		"API key for OpenAI.",
		ComponentIntelligence,
	)

	OpenAIAPIBase = RegisterStringVar(
		"OPENAI_API_BASE",
		"",
		"Custom base URL for the OpenAI API.",
		ComponentIntelligence,
	)

	AnthropicAPIKey = RegisterStringVar(
		"ANTHROPIC_API_KEY",
		"",
		"API key for Anthropic.",
		ComponentIntelligence,
	)

	AnalysisEnabled = RegisterBoolVar(
		"REPLAY_ANALYSIS_ENABLED",
		true,
		"When false, skip AI analysis of ingested events entirely.",
		ComponentIntelligence,
	)

	AnalysisBatchSize = RegisterIntVar(
		"REPLAY_ANALYSIS_BATCH_SIZE",
		10,
		"Maximum number of parsed events sent to the LLM per request.",
		ComponentIntelligence,
	)
)
