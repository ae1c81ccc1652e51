package config

const (
	defaultEnvironment       = "qa"
	defaultAgent             = "ingestagent"
	defaultAlgorithm         = "RS256"
	defaultExpirationSeconds = 3600
	defaultTimezone          = "America/New_York"
	defaultUploadConcurrency = 4
	defaultMaxPings          = 25
	defaultPingInterval      = 10
	defaultJobLogPath        = "~/.local/share/iiifingest/jobs.db"
	defaultLogLevel          = "info"

	// URL templates for the media delivery service. Private variants
	// serve environments reachable only inside the service network;
	// they default to the public templates and are expected to be
	// overridden for dev deployments.
	defaultBucketName      = "edu.harvard.huit.lts.mps.{account}-{space}-{environment}"
	defaultAssetBaseURL    = "https://mps-{environment}.lib.harvard.edu/assets/images/{namespace}:"
	defaultManifestBaseURL = "https://nrs-{environment}.lib.harvard.edu/URN-3:{namespace}:"
	defaultIngestURL       = "https://mps-admin-{environment}.lib.harvard.edu/admin/ingest/initialize"
	defaultJobStatusURL    = "https://mps-admin-{environment}.lib.harvard.edu/admin/ingest/jobstatus/"

	defaultManifestSchemaURL = "https://raw.githubusercontent.com/IIIF/presentation-validator/master/schema/iiif_3_0.json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Ingest: Ingest{
			Environment: defaultEnvironment,
			Agent:       defaultAgent,
		},
		Endpoints: Endpoints{
			BucketName:        defaultBucketName,
			AssetBaseURL:      defaultAssetBaseURL,
			ManifestBaseURL:   defaultManifestBaseURL,
			IngestURL:         defaultIngestURL,
			IngestURLPrivate:  defaultIngestURL,
			JobStatusURL:      defaultJobStatusURL,
			JobStatusPrivate:  defaultJobStatusURL,
			ManifestSchemaURL: defaultManifestSchemaURL,
		},
		Auth: Auth{
			Resources:         []string{"ingest"},
			Algorithm:         defaultAlgorithm,
			ExpirationSeconds: defaultExpirationSeconds,
			Timezone:          defaultTimezone,
		},
		Upload: Upload{
			Concurrency: defaultUploadConcurrency,
		},
		Poll: Poll{
			MaxPings:        defaultMaxPings,
			IntervalSeconds: defaultPingInterval,
		},
		JobLog: JobLog{
			Enabled: true,
			Path:    defaultJobLogPath,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
