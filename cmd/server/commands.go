package main

import (
	"github.com/rohits-web03/escapegame/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCmd() *cobra.Command {
	log := logrus.New()
	config.LoadEnvFile(log)
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:     "escapegame",
		Short:   "Backend for the escape game: parties, groups, challenges and group chat.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v, log)
		},
	}
	config.BindFlags(cmd.PersistentFlags(), v)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and chat gateway",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v, log)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the postgres schema and exit",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, log)
			if err != nil {
				return err
			}
			db, err := openPostgres(cfg, log)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err == nil {
				defer sqlDB.Close()
			}
			log.Info("migrations applied")
			return nil
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Upsert challenges from a JSON file and exit",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, log)
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				file = cfg.SeedFile
			}
			if file == "" {
				return errNoSeedFile
			}
			st, closeStore, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()
			storage, err := openObjectStorage(cfg, log)
			if err != nil {
				return err
			}
			return seedChallenges(cmd.Context(), st, storage, file, log)
		},
	}
	seed.Flags().StringP("file", "f", "", "challenge JSON file (defaults to --seed-file)")

	cmd.AddCommand(serve, migrate, seed)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("escapegame v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// loadConfig reads the merged flag/env configuration and applies the
// logging settings to log.
func loadConfig(v *viper.Viper, log *logrus.Logger) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	return cfg, nil
}
