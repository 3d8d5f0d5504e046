package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/foodautomat/internal/archive"
	"github.com/chrisdamba/foodautomat/internal/cache"
	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/notify"
	"github.com/chrisdamba/foodautomat/internal/personalize"
	"github.com/chrisdamba/foodautomat/internal/repositories"
	"github.com/chrisdamba/foodautomat/internal/repositories/postgres"
	"github.com/chrisdamba/foodautomat/internal/runner"
	"github.com/chrisdamba/foodautomat/internal/schedule"
	"github.com/chrisdamba/foodautomat/internal/stream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const profileCacheTTL = 15 * time.Minute

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foodautomat",
	Short: "Automation engine for food ordering platforms",
	Long:  `foodautomat runs the recurring automation tasks of a food ordering platform: scheduled notifications, menu schedule upkeep, offer rule evaluation support and user preference profiling.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := run(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func run(cfg *models.Config) error {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	producer, err := stream.NewProducer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	defer producer.Close()

	users := postgres.NewUserRepository(pool)
	stores := postgres.NewStoreRepository(pool)
	items := postgres.NewMenuItemRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	schedules := postgres.NewMenuScheduleRepository(pool)
	rules := postgres.NewOfferRuleRepository(pool)
	notifications := postgres.NewNotificationRepository(pool)
	executions := postgres.NewExecutionLogRepository(pool)

	var profiles repositories.ProfileRepository = postgres.NewProfileRepository(pool)
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		profiles = cache.NewCachedProfiles(profiles, redisCache, profileCacheTTL)
	}

	resolver := schedule.NewResolver(schedules)
	engine := personalize.NewEngine(orders, items, profiles, rules, resolver)

	senders := notify.SenderRegistry{
		models.ChannelInApp: &notify.ConsoleSender{},
		models.ChannelPush:  notify.NewKafkaSender(producer, stream.TopicNotificationOutbox),
		models.ChannelEmail: notify.NewKafkaSender(producer, stream.TopicNotificationOutbox),
		models.ChannelSMS:   notify.NewKafkaSender(producer, stream.TopicNotificationOutbox),
	}
	notifier := notify.NewScheduler(notifications, users, engine, senders, producer)

	var archiver *archive.Archiver
	if cfg.ArchiveEnabled {
		archiver = archive.NewArchiver(archive.Config{
			Destination: cfg.ArchiveDestination,
			Path:        cfg.ArchivePath,
			Region:      cfg.CloudStorage.Region,
			BucketName:  cfg.CloudStorage.BucketName,
		})
	}

	r := runner.NewRunner(cfg, notifier, engine, resolver, stores, schedules, executions, archiver, producer)
	if err := r.Start(); err != nil {
		return fmt.Errorf("failed to start runner: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	return r.Shutdown()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().String("postgres-dsn", "", "Postgres connection string")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().Bool("redis-enabled", false, "Enable Redis profile cache")
	rootCmd.Flags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.Flags().Duration("notification-interval", time.Minute, "Notification dispatch interval")
	rootCmd.Flags().Duration("personalization-interval", 6*time.Hour, "Profile refresh interval")
	rootCmd.Flags().Duration("cleanup-interval", 24*time.Hour, "Execution log cleanup interval")
	rootCmd.Flags().Duration("schedule-check-interval", time.Hour, "Menu schedule validation interval")
	rootCmd.Flags().Int("log-retention-days", 30, "Days to keep execution log rows")
	rootCmd.Flags().Bool("archive-enabled", false, "Archive expired execution logs before deletion")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
