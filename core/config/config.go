package config

import (
	"reflect"
	"strings"

	"catalog-unifier/core/catalog"
	"catalog-unifier/core/logger"
	"catalog-unifier/core/memory"
	"catalog-unifier/core/oracle"
	"catalog-unifier/core/server"
	"catalog-unifier/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the read-only catalog API.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the archive object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the prior-catalog database.
	Database catalog.Config `mapstructure:"database"`
	// Memory holds configuration for the learned memory tables.
	Memory memory.Config `mapstructure:"memory"`
	// Oracle holds configuration for the generative-model oracle.
	Oracle oracle.Config `mapstructure:"oracle"`
	// Run holds configuration for the scrape and unify runs.
	Run RunConfig `mapstructure:"run"`
}

// RunConfig holds the run-level settings shared by the scrape and unify
// commands.
type RunConfig struct {
	// SourcesFile is the YAML file listing the scrape sources.
	SourcesFile string `mapstructure:"sources_file" default:"sources.yaml"`
	// ResultsDir is where scrape workers drop their record files.
	ResultsDir string `mapstructure:"results_dir" default:"Results"`
	// ExportDir is where catalog snapshots and reports are written.
	ExportDir string `mapstructure:"export_dir" default:"Export"`
	// Workers bounds how many scrape workers run concurrently.
	Workers int `mapstructure:"workers" default:"4"`
	// AutoConfirm accepts oracle proposals without asking the operator.
	AutoConfirm bool `mapstructure:"auto_confirm" default:"false"`
	// HouseBrand is the operator's own brand; products carrying it (or no
	// brand at all) allocate under the reserved house-brand code segment.
	HouseBrand string `mapstructure:"house_brand" default:"Desaka"`
}

// Load loads configuration from environment variables and .env file.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. MEMORY_ROOT -> memory.root)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
