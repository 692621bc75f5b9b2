package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"dokumi"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	LogLevel        string `envconfig:"OCR_SERVICE_LOG_LEVEL" default:"info"`
	UploadFolder    string `envconfig:"OCR_SERVICE_UPLOAD_FOLDER" default:"uploads"`
	OutputFolder    string `envconfig:"OCR_SERVICE_OUTPUT_FOLDER" default:"ocr_results"`
	MigrationFolder string `envconfig:"OCR_SERVICE_MIGRATIONS_FOLDER" default:""`

	// Languages is a tesseract language string, e.g. "eng+ind" selects the
	// bilingual English/Indonesian model.
	Languages       string `envconfig:"OCR_SERVICE_LANGUAGES" default:"eng+ind"`
	RenderDPI       int    `envconfig:"OCR_SERVICE_RENDER_DPI" default:"300"`
	PageParallelism int    `envconfig:"OCR_SERVICE_PAGE_PARALLELISM" default:"4"`

	MaxWorkers   int           `envconfig:"OCR_SERVICE_MAX_WORKERS" default:"10"`
	MaxAttempts  int           `envconfig:"OCR_SERVICE_MAX_ATTEMPTS" default:"3"`
	RetryBackoff time.Duration `envconfig:"OCR_SERVICE_RETRY_BACKOFF" default:"60s"`
	JobTimeout   time.Duration `envconfig:"OCR_SERVICE_JOB_TIMEOUT" default:"5m"`

	// External tool locations (poppler).
	PdftoppmPath  string `envconfig:"OCR_SERVICE_PDFTOPPM_PATH" default:"/usr/bin/pdftoppm"`
	PdftotextPath string `envconfig:"OCR_SERVICE_PDFTOTEXT_PATH" default:"/usr/bin/pdftotext"`

	Callback callbackConfig
	Artifact artifactConfig
}

type callbackConfig struct {
	URL     string        `envconfig:"OCR_SERVICE_CALLBACK_URL" default:""`
	Token   string        `envconfig:"OCR_SERVICE_CALLBACK_TOKEN" default:""`
	Timeout time.Duration `envconfig:"OCR_SERVICE_CALLBACK_TIMEOUT" default:"30s"`
}

// artifactConfig selects where aggregated OCR text artifacts are written.
// When Endpoint is empty the local OutputFolder is used.
type artifactConfig struct {
	Endpoint  string `envconfig:"OCR_SERVICE_S3_ENDPOINT" default:""`
	AccessKey string `envconfig:"OCR_SERVICE_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"OCR_SERVICE_S3_SECRET_KEY" default:""`
	Bucket    string `envconfig:"OCR_SERVICE_S3_BUCKET" default:"ocr-results"`
	UseSSL    bool   `envconfig:"OCR_SERVICE_S3_USE_SSL" default:"true"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
