package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the index cache",
		Long:  "Show information about and clean the cached index files",
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheCleanCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		RunE:  runCacheInfo,
	}
}

func newCacheCleanCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached index files",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCacheClean(olderThan)
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only remove entries older than this duration")
	return cmd
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show the cache directory path",
		RunE:  runCacheDir,
	}
}

func cacheManager() (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Settings.CacheDir != "" {
		return cache.NewManager(cfg.Settings.CacheDir), nil
	}
	return cache.NewDefaultManager()
}

func runCacheInfo(*cobra.Command, []string) error {
	manager, err := cacheManager()
	if err != nil {
		return err
	}
	info, err := manager.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("Cache directory: %s\n", info.Directory)
	fmt.Printf("Index entries: %d\n", info.IndexFiles)
	fmt.Printf("Total size: %d bytes\n", info.TotalSize)
	return nil
}

func runCacheClean(olderThan time.Duration) error {
	manager, err := cacheManager()
	if err != nil {
		return err
	}

	var result *cache.CleanResult
	if olderThan > 0 {
		result, err = manager.CleanOlderThan(olderThan)
	} else {
		result, err = manager.Clean()
	}
	if err != nil {
		return err
	}

	logger.Info("cache cleaned", logger.Fields{
		"files": result.Files,
		"freed": result.TotalFreed,
	})
	return nil
}

func runCacheDir(*cobra.Command, []string) error {
	manager, err := cacheManager()
	if err != nil {
		return err
	}
	fmt.Println(manager.GetDirectory())
	return nil
}
