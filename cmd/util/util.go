package util

import (
	"strings"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/store"
	"github.com/ValentinKolb/ttlstore/lib/store/global"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the common store connection flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "driver"
	cmd.PersistentFlags().String(key, "memory", WrapString("Storage driver to use (memory, file, sqlite, redis)"))

	key = "path"
	cmd.PersistentFlags().String(key, "ttlstore-data", WrapString("Root directory (file driver) or database file (sqlite driver)"))

	key = "addr"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("Redis server address (redis driver)"))

	key = "namespace"
	cmd.PersistentFlags().String(key, "default", WrapString("Namespace of the store to operate on"))

	key = "store-version"
	cmd.PersistentFlags().Int(key, 1, WrapString("Version of the store - bumping it abandons all data of the previous version"))

	key = "ttl-ms"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Default entry lifespan in milliseconds (0 = engine default of one day)"))

	key = "gc-interval-ms"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Minimum delay between GC sweeps in milliseconds (0 = engine default of one day)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("ttlstore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStore builds the shared store from the viper configuration
func GetStore() (store.IFullStore, error) {
	global.Configure(func(c *global.Config) {
		c.Driver = global.Driver(viper.GetString("driver"))
		c.Path = viper.GetString("path")
		c.Addr = viper.GetString("addr")
		c.Namespace = viper.GetString("namespace")
		c.Version = viper.GetInt("store-version")
		c.DefaultLifespan = lifespan.Millis(viper.GetInt64("ttl-ms"))
		c.GCInterval = time.Duration(viper.GetInt64("gc-interval-ms")) * time.Millisecond
	})

	return global.Store()
}
