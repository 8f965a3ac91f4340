package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nanotts/nanotts/internal/cache"
	"github.com/nanotts/nanotts/internal/config"
)

var (
	cacheCmd = &cobra.Command{
		Use:     "cache",
		Short:   "Show the audio cache",
		Long:    paragraph(fmt.Sprintf("\n%s where synthesized audio is kept and how much of it there is. Enable the cache with --cache or in the config file.", keyword("Show"))),
		Example: paragraph("nanotts cache\nnanotts cache prune\nnanotts cache clear"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(dc *cache.DiskCache) error {
				s, err := dc.Stats()
				if err != nil {
					return err
				}
				return renderCacheStats(cmd.OutOrStdout(), s, time.Now())
			})
		},
	}

	cachePruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(dc *cache.DiskCache) error {
				n, err := dc.Prune()
				if err != nil {
					return err
				}
				log.Info("Pruned audio cache", "removed", n)
				return nil
			})
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(dc *cache.DiskCache) error {
				if err := dc.Clear(); err != nil {
					return err
				}
				log.Info("Cleared audio cache", "dir", dc.Dir())
				return nil
			})
		},
	}
)

func init() {
	cacheCmd.AddCommand(cachePruneCmd, cacheClearCmd)
}

func withCache(cmd *cobra.Command, fn func(*cache.DiskCache) error) error {
	if err := readExplicitConfig(cmd); err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	dc, err := openCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer func() { _ = dc.Close() }()
	return fn(dc)
}

func renderCacheStats(w io.Writer, s cache.Stats, now time.Time) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", keyword("Directory:"), s.Dir); err != nil {
		return err
	}
	if s.Entries == 0 {
		_, err := fmt.Fprintln(w, faint("No cached audio."))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s in %s\n%s %s, %s %s\n",
		keyword("Entries:"), humanize.Comma(int64(s.Entries)), humanize.Bytes(uint64(s.Size)), //nolint:gosec
		keyword("Oldest:"), humanize.RelTime(s.Oldest, now, "ago", "from now"),
		keyword("newest:"), humanize.RelTime(s.Newest, now, "ago", "from now"),
	)
	return err
}
