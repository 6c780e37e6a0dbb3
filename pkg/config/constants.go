package config

import "time"

const (
	envAPIURL        = "PALPITEIRO_API_URL"
	envAPIKey        = "PALPITEIRO_API_KEY"
	envPositions     = "PALPITEIRO_POSITIONS"
	envBackground    = "PALPITEIRO_BACKGROUND"
	envConcurrency   = "PALPITEIRO_CONCURRENCY"
	envAssetTimeout  = "PALPITEIRO_ASSET_TIMEOUT"
	envAssetRetries  = "PALPITEIRO_ASSET_RETRIES"
	envAssetRPS      = "PALPITEIRO_ASSET_RPS"
	envFailurePolicy = "PALPITEIRO_FAILURE_POLICY"
	envCache         = "PALPITEIRO_CACHE"
	envCacheDir      = "PALPITEIRO_CACHE_DIR"
	envRedisAddr     = "PALPITEIRO_REDIS_ADDR"
	envRedisPassword = "PALPITEIRO_REDIS_PASSWORD"
	envRedisDB       = "PALPITEIRO_REDIS_DB"
	envMongoURI      = "PALPITEIRO_MONGO_URI"
	envMongoDB       = "PALPITEIRO_MONGO_DB"
	envMemoryRenders = "PALPITEIRO_MEMORY_RENDERS"
	envListen        = "PALPITEIRO_LISTEN"

	defaultAPITimeout    = 30 * time.Second
	defaultConcurrency   = 5
	defaultAssetTimeout  = 10 * time.Second
	defaultAssetRetries  = 2
	defaultFailurePolicy = "degrade"
	defaultCacheBackend  = "file"
	defaultRedisAddr     = "localhost:6379"
	defaultMongoDB       = "palpiteiro"
	defaultMemoryRenders = 100
	defaultListen        = ":8080"
)
