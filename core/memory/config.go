package memory

// Config holds configuration for the memory table store.
type Config struct {
	// Root is the directory holding the memory table files.
	Root string `mapstructure:"root" default:"Memory"`
	// CacheSize is the maximum number of tables kept in memory at once.
	CacheSize int `mapstructure:"cache_size" default:"16"`
	// Language is the language code suffix of the table files (e.g. CS, SK).
	Language string `mapstructure:"language" default:"CS"`
}
