package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"csr-pipeline/internal/servicerequest"
	"csr-pipeline/internal/socrata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Source defaults for the Chicago 311 dataset.
const (
	DefaultDomain    = "data.cityofchicago.org"
	DefaultDataset   = "v6vf-nfxy"
	DefaultStartDate = "2018-07-01"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Socrata            socrata.Config
	StartDate          time.Time
	WarehouseDSN       string
	BucketURL          string
	BucketPrefix       string
	DataPath           string
	LogDir             string
	CategoriesFile     string
	CommunityAreasFile string
	Workers            int
	MixedClusterPolicy servicerequest.MixedClusterPolicy
}

// fileConfig is the optional YAML overlay. Empty fields leave the default in place.
type fileConfig struct {
	Socrata struct {
		Domain            string  `yaml:"domain"`
		Dataset           string  `yaml:"dataset"`
		AppToken          string  `yaml:"app_token"`
		StartDate         string  `yaml:"start_date"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		ChunkSize         int     `yaml:"chunk_size"`
		MaxRetries        int     `yaml:"max_retries"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"socrata"`
	Warehouse struct {
		DSN string `yaml:"dsn"`
	} `yaml:"warehouse"`
	Bucket struct {
		URL    string `yaml:"url"`
		Prefix string `yaml:"prefix"`
	} `yaml:"bucket"`
	DataPath           string `yaml:"data_path"`
	CategoriesFile     string `yaml:"categories_file"`
	CommunityAreasFile string `yaml:"community_areas_file"`
	Resolve            struct {
		Workers            int    `yaml:"workers"`
		MixedClusterPolicy string `yaml:"mixed_cluster_policy"`
	} `yaml:"resolve"`
}

// Load loads the configuration from .env files, the optional YAML file named by
// CSR_CONFIG_FILE and environment variables, in increasing precedence.
func Load() (*AppConfig, error) {
	// 1. .env next to the binary (scheduled runs start from an arbitrary cwd)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	defaultData := "."
	if exeDir != "" {
		defaultData = exeDir
	}
	return load(defaultData)
}

func load(defaultDataPath string) (*AppConfig, error) {
	var fc fileConfig
	if path := os.Getenv("CSR_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded YAML configuration overlay")
	}

	startDate, err := time.Parse("2006-01-02", getEnv("SOCRATA_START_DATE", or(fc.Socrata.StartDate, DefaultStartDate)))
	if err != nil {
		return nil, fmt.Errorf("invalid SOCRATA_START_DATE: %w", err)
	}
	policy, err := servicerequest.ParseMixedClusterPolicy(getEnv("MIXED_CLUSTER_POLICY", fc.Resolve.MixedClusterPolicy))
	if err != nil {
		return nil, err
	}

	dataPath := getEnv("DATA_PATH", or(fc.DataPath, defaultDataPath))
	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		log.Warn().Err(err).Str("path", dataPath).Msg("Failed to create data directory")
	}

	timeoutSecs := getEnvInt("SOCRATA_TIMEOUT_SECONDS", fc.Socrata.TimeoutSeconds)

	cfg := &AppConfig{
		Socrata: socrata.Config{
			Domain:            getEnv("SOCRATA_DOMAIN", or(fc.Socrata.Domain, DefaultDomain)),
			Dataset:           getEnv("SOCRATA_DATASET", or(fc.Socrata.Dataset, DefaultDataset)),
			AppToken:          getEnv("SOCRATA_APP_TOKEN", fc.Socrata.AppToken),
			Timeout:           time.Duration(timeoutSecs) * time.Second,
			ChunkSize:         getEnvInt("SOCRATA_CHUNK_SIZE", fc.Socrata.ChunkSize),
			MaxRetries:        getEnvInt("SOCRATA_MAX_RETRIES", fc.Socrata.MaxRetries),
			RequestsPerSecond: fc.Socrata.RequestsPerSecond,
		}.WithDefaults(),
		StartDate:          startDate,
		WarehouseDSN:       getEnv("WAREHOUSE_DSN", fc.Warehouse.DSN),
		BucketURL:          getEnv("BUCKET_URL", fc.Bucket.URL),
		BucketPrefix:       getEnv("BUCKET_PREFIX", fc.Bucket.Prefix),
		DataPath:           dataPath,
		LogDir:             logDir,
		CategoriesFile:     getEnv("CATEGORIES_FILE", or(fc.CategoriesFile, filepath.Join(dataPath, "sr_categories.csv"))),
		CommunityAreasFile: getEnv("COMMUNITY_AREAS_FILE", fc.CommunityAreasFile),
		Workers:            getEnvInt("RESOLVE_WORKERS", fc.Resolve.Workers),
		MixedClusterPolicy: policy,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
