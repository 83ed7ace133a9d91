package config

const (
	defaultSourceDir          = "~/takeout"
	defaultLibraryDir         = "~/photos"
	defaultLogDir             = "~/.local/share/shoebox/logs"
	defaultIndexLog           = "~/.local/share/shoebox/index.tsv"
	defaultBadFileLog         = "~/.local/share/shoebox/bad_files.tsv"
	defaultCatalog            = "~/.local/share/shoebox/catalog.db"
	defaultSupplementalSuffix = "supplemental-metadata"
	defaultMinFreeSpaceGiB    = 1
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			IndexLog:   defaultIndexLog,
			BadFileLog: defaultBadFileLog,
			Catalog:    defaultCatalog,
		},
		Organize: Organize{
			SupplementalSuffix: defaultSupplementalSuffix,
			MinFreeSpaceGiB:    defaultMinFreeSpaceGiB,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
