package storage

import "os"

// Mode represents how a backing service is reached
type Mode string

const (
	ModeLocal Mode = "local"
	ModeAWS   Mode = "aws"
	ModeNone  Mode = "none"
)

// DynamoConfig holds run-store configuration
type DynamoConfig struct {
	Mode      Mode
	Endpoint  string // for local mode
	Region    string
	RunsTable string
}

// LoadDynamoConfig loads run-store config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := Mode(getEnv("DYNAMO_MODE", "none"))
	if mode != ModeLocal && mode != ModeAWS {
		mode = ModeNone
	}

	return DynamoConfig{
		Mode:      mode,
		Endpoint:  getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:    getEnv("DYNAMO_REGION", "eu-central-1"),
		RunsTable: getEnv("DYNAMO_RUNS_TABLE", "calex-export-runs"),
	}
}

// S3Config holds dataset uploader configuration
type S3Config struct {
	Mode     Mode
	Endpoint string // for local mode (MinIO etc.)
	Region   string
	Bucket   string
}

// LoadS3Config loads uploader config from environment. The bucket comes
// from the main config's required EXPORT_BUCKET.
func LoadS3Config(bucket string) S3Config {
	mode := Mode(getEnv("STORAGE_MODE", "aws"))
	if mode != ModeLocal && mode != ModeAWS {
		mode = ModeNone
	}

	return S3Config{
		Mode:     mode,
		Endpoint: getEnv("S3_ENDPOINT", "http://localhost:9000"),
		Region:   getEnv("S3_REGION", "eu-central-1"),
		Bucket:   bucket,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
