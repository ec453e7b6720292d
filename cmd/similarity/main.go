package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/drakos74/free-music/infra/config"
	"github.com/drakos74/free-music/internal/similarity"
	"github.com/drakos74/free-music/internal/storage"
	"github.com/drakos74/free-music/internal/storage/file/json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	featuresTable       = "features"
	classificationTable = "classification"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "similarity",
		Short: "Acoustic similarity of the tracks of a music library",
	}
	rootCmd.PersistentFlags().String("config", "", "yaml config file, defaults are used if empty")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logs")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the classification map from a features file and print the similar tracks",
		RunE:  runBuild,
	}
	buildCmd.Flags().String("features", "", "json file with the track features")
	buildCmd.Flags().Int("count", 5, "similar tracks to print for every track")
	buildCmd.Flags().Bool("dump", false, "print the normalization factors and the classification map")
	buildCmd.Flags().String("out", "", "storage folder to save the classification report into, nothing is saved if empty")
	_ = buildCmd.MarkFlagRequired("features")
	rootCmd.AddCommand(buildCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the classification map up to date, rebuilding it on SIGHUP",
		RunE:  runServe,
	}
	serveCmd.Flags().String("root", storage.DefaultDir, "storage folder")
	serveCmd.Flags().String("library", "default", "library the features belong to")
	serveCmd.Flags().String("metrics", ":2112", "address to expose the prometheus metrics on")
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (similarity.Config, error) {
	cfg := similarity.DefaultConfig()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		if err := config.Load(path, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	features, _ := cmd.Flags().GetString("features")
	count, _ := cmd.Flags().GetInt("count")
	dump, _ := cmd.Flags().GetBool("dump")
	out, _ := cmd.Flags().GetString("out")

	library := strings.TrimSuffix(filepath.Base(features), ".json")
	var grouped []similarity.GroupedItem
	if err := json.Load(filepath.Dir(features), library, &grouped); err != nil {
		return err
	}

	searcher, err := similarity.NewSearcher(cfg)
	if err != nil {
		return err
	}
	items, err := similarity.Assemble(searcher.Layout(), grouped)
	if err != nil {
		return err
	}
	if err := searcher.Build(cmd.Context(), items); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if dump {
		if err := searcher.Dump(w); err != nil {
			return err
		}
	}

	for _, item := range items {
		similar := searcher.SimilarItems(item.ID, count)
		if len(similar) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", item.ID, strings.Join(similar, ", "))
	}

	shard := storage.VoidShard()
	if out != "" {
		shard = json.BlobShard(out, classificationTable)
	}
	store, err := shard(library)
	if err != nil {
		return err
	}
	report, err := searcher.Report()
	if err != nil {
		return err
	}
	key := storage.Key{Library: library, Label: report.Stats.ID}
	if err := store.Store(key, report); err != nil {
		return err
	}
	log.Info().Str("library", library).Str("key", key.Path()).Str("out", out).Msg("stored classification report")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, _ := cmd.Flags().GetString("root")
	library, _ := cmd.Flags().GetString("library")
	addr, _ := cmd.Flags().GetString("metrics")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := json.BlobShard(root, featuresTable)(library)
	if err != nil {
		return err
	}
	source := similarity.NewBlobSource(store, storage.Key{Library: library, Label: featuresTable}, cfg.Layout())
	refresher, err := similarity.NewRefresher(cfg, source)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: addr, Handler: promhttp.Handler()}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("could not start metrics server")
		}
	}()
	defer server.Close()

	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				select {
				case trigger <- struct{}{}:
				default:
					// a refresh is already pending
				}
			}
		}
	}()

	log.Info().Str("library", library).Str("metrics", addr).Msg("serving similarity")
	refresher.Run(ctx, trigger)
	return nil
}
