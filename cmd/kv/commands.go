package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
)

// parseValue stores valid JSON verbatim and everything else as a string,
// so `kv set n 42` and `kv set msg hello` both do the expected thing.
func parseValue(raw string) any {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	return raw
}

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value] [ttlMs]",
		Short: "Sets the value for a key, optionally with an explicit lifespan",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := parseValue(args[1])

			var ttl []lifespan.Lifespan
			if len(args) == 3 {
				ms, err := strconv.ParseInt(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("ttlMs must be a number: %w", err)
				}
				ttl = append(ttl, lifespan.Millis(ms))
			}

			if err := kvStore.Set(cmd.Context(), key, value, ttl...); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			var value json.RawMessage
			found, err := kvStore.Get(cmd.Context(), key, &value)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, found, value)
			return nil
		},
	}
	storedCmd = &cobra.Command{
		Use:   "stored [key]",
		Short: "Reads the full envelope for a key, including its timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			entry, found, err := kvStore.GetStored(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			fmt.Printf("key=%s, value=%s, stored=%s, expires=%s\n",
				key,
				entry.Value,
				time.UnixMilli(entry.StoredMs).Format(time.RFC3339),
				time.UnixMilli(entry.ExpiryMs).Format(time.RFC3339),
			)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]...",
		Short: "Deletes one or more key value pairs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Delete(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Counts the live entries in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := kvStore.Size(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("size=%d\n", n)
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps all live entries of the namespace as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := kvStore.AsMap(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes every entry in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := kvStore.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	gcCmd = &cobra.Command{
		Use:   "gc",
		Short: "Runs a garbage collection sweep if one is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := kvStore.GC(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("gc successfully")
			return nil
		},
	}
	gcNowCmd = &cobra.Command{
		Use:   "gc-now",
		Short: "Runs an unconditional garbage collection sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := kvStore.GCNow(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("gc-now successfully")
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints the store metrics in Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			metrics.WritePrometheus(os.Stdout, false)
			return nil
		},
	}
)
