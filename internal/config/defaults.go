package config

import "slices"

const (
	defaultConfigPath       = "~/.config/geopipe/config.toml"
	projectConfigFile       = "geopipe.toml"
	historyFileName         = "history.db"
	defaultDataDir          = "data"
	defaultLogDir           = "~/.local/share/geopipe/logs"
	defaultDatasetName      = "GSE68849"
	defaultDatasetSeries    = "GSE68nnn"
	defaultFetchBaseURL     = "https://ftp.ncbi.nlm.nih.gov/geo"
	defaultFetchTimeout     = 600
	defaultFetchUserAgent   = "geopipe/dev"
	defaultProjectionSource = "Probes"
	defaultProjectionSuffix = "Trimmed"
	defaultWorkflowParallel = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultHistoryEnabled   = true
	maxWorkflowParallel     = 64
	envDataDir              = "GEOPIPE_DATA_DIR"
	envDatasetName          = "GEOPIPE_DATASET_NAME"
	envDatasetSeries        = "GEOPIPE_DATASET_SERIES"
	envFetchBaseURL         = "GEOPIPE_BASE_URL"
)

var defaultDropColumns = []string{
	"Definition",
	"Ontology_Component",
	"Ontology_Process",
	"Ontology_Function",
	"Synonyms",
	"Obsolete_Probe_Id",
	"Probe_Sequence",
}

// DefaultDropColumns returns the annotation columns removed from Probes tables.
func DefaultDropColumns() []string {
	return slices.Clone(defaultDropColumns)
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Dataset: Dataset{
			Name:   defaultDatasetName,
			Series: defaultDatasetSeries,
		},
		Fetch: Fetch{
			BaseURL:        defaultFetchBaseURL,
			TimeoutSeconds: defaultFetchTimeout,
			UserAgent:      defaultFetchUserAgent,
		},
		Projection: Projection{
			SourceTable: defaultProjectionSource,
			Suffix:      defaultProjectionSuffix,
			DropColumns: DefaultDropColumns(),
		},
		Workflow: Workflow{
			MaxParallel: defaultWorkflowParallel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}
