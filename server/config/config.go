package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"game-lottery/server/constant"
	"game-lottery/server/db"
	"game-lottery/server/model"
	"game-lottery/server/service"
	"game-lottery/server/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/go-crypt/crypt/algorithm/argon2"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"io/fs"
	"net/http"
	"net/smtp"
	"os"
	"path"
	"strings"
	"time"
)

// EnvPrefix prefixes environment overrides, e.g. LOTTERY_JWT_SECRET.
const EnvPrefix = "LOTTERY"

type ServerConfig struct {
	Config         Configuration
	JwtSecret      []byte
	JwtTTL         time.Duration
	WebSocket      websocket.Upgrader
	Hub            *service.Hub
	Lottery        *service.Lottery
	AccountService *service.AccountService
	Logger         *zap.Logger
}

func NewConfiguration() Configuration {

	// Get the current working directory
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	var configDir string
	flag.StringVar(&configDir, "config", dir, "config yml dir")
	flag.Parse()

	config, err := LoadConfiguration(configDir)
	if err != nil {
		panic(err)
	}
	return config
}

// LoadConfiguration reads configuration.yml and an optional .env file from
// configDir. Environment variables override both.
func LoadConfiguration(configDir string) (Configuration, error) {
	var config Configuration

	if err := godotenv.Load(path.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	v.SetConfigFile(path.Join(configDir, "configuration.yml"))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("read configuration: %w", err)
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode configuration: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "")
	v.SetDefault("lottery.organizer", "")
	v.SetDefault("lottery.organizer_passphrase", "")
	v.SetDefault("lottery.organizer_balance", "0")
	v.SetDefault("lottery.minimum_contribution", "0.001")
	v.SetDefault("lottery.history_limit", 20)
	v.SetDefault("lottery.hub_buffer", service.DefaultHubBuffer)
	v.SetDefault("user.default_balance", "1")
	v.SetDefault("user.receive_amount", "0.1")
	v.SetDefault("user.receive_limit", "10")
	v.SetDefault("user.receive_count", 3)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.identifier", "")
	v.SetDefault("smtp.sender", "")
	v.SetDefault("smtp.recipients", []string{})
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database_index", 0)
	v.SetDefault("redis.event_channel", constant.RedisEventChannel)
	v.SetDefault("argon2.variant", "argon2id")
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.memory", 65536)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("discord.enabled", false)
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.channel_id", "")
}

func NewServerConfig(config Configuration, webSocket websocket.Upgrader, hub *service.Hub, lottery *service.Lottery, accountService *service.AccountService, logger *zap.Logger) (*ServerConfig, error) {
	if config.Jwt.Secret == "" {
		return nil, errors.New("jwt.secret is not configured")
	}

	return &ServerConfig{
		Config:         config,
		JwtSecret:      []byte(config.Jwt.Secret),
		JwtTTL:         time.Duration(config.Jwt.ExpireHours) * time.Hour,
		WebSocket:      webSocket,
		Hub:            hub,
		Lottery:        lottery,
		AccountService: accountService,
		Logger:         logger,
	}, nil
}

func NewDatabase(lc fx.Lifecycle, config Configuration) (*gorm.DB, error) {
	dsn := config.Database.Path
	if dsn == "" {
		var err error
		if dsn, err = db.DefaultDSN(); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, errs := database.DB()
			if errs != nil {
				return errs
			}
			return sqlDB.Close()
		},
	})
	return database, nil
}

func NewHub(config Configuration, logger *zap.Logger) *service.Hub {
	return service.NewHub(logger.Named("hub"), config.Lottery.HubBuffer)
}

// NewNotifier registers the event publishers enabled by the configuration.
func NewNotifier(lc fx.Lifecycle, config Configuration, logger *zap.Logger, hub *service.Hub, redisClient *redis.Client, smtpAuth smtp.Auth) (*service.Notifier, error) {
	notifier := service.NewNotifier(logger.Named("notifier"), hub, service.NewRedisPublisher(redisClient, config.Redis.EventChannel))

	if config.Smtp.Enabled {
		addr := fmt.Sprintf("%s:%d", config.Smtp.Host, config.Smtp.Port)
		notifier.Register(service.NewWinnerMailer(smtpAuth, addr, config.Smtp.Sender, config.Smtp.Recipients))
	}

	if config.Discord.Enabled {
		session, err := discordgo.New("Bot " + config.Discord.Token)
		if err != nil {
			notifier.Close()
			return nil, err
		}
		notifier.Register(service.NewDiscordAnnouncer(session, config.Discord.ChannelID))
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return session.Open()
			},
			OnStop: func(ctx context.Context) error {
				return session.Close()
			},
		})
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			notifier.Close()
			return nil
		},
	})
	return notifier, nil
}

func NewLottery(config Configuration, database *gorm.DB, notifier *service.Notifier, logger *zap.Logger) (*service.Lottery, error) {
	minimum, err := etherToWei("lottery.minimum_contribution", config.Lottery.MinimumContribution)
	if err != nil {
		return nil, err
	}

	return service.NewLottery(context.Background(), db.NewContractDB(database), service.BlockEntropy{}, notifier, logger.Named("lottery"), service.LotteryConfig{
		Organizer:           config.Lottery.Organizer,
		MinimumContribution: minimum,
	})
}

// NewAccountService builds the wallet service and makes sure the organizer
// can log in when a passphrase is configured.
func NewAccountService(config Configuration, database *gorm.DB, hasher *argon2.Hasher, redisClient *redis.Client, logger *zap.Logger) (*service.AccountService, error) {
	accountConfig, err := accountConfig(config)
	if err != nil {
		return nil, err
	}

	accounts, err := service.NewAccountService(db.NewAccountDB(database), hasher, service.NewRedisLimiter(redisClient, constant.RedisReceivePrefix), logger.Named("account"), accountConfig)
	if err != nil {
		return nil, err
	}

	if config.Lottery.Organizer != "" && config.Lottery.OrganizerPassphrase != "" {
		balance, errs := etherToWei("lottery.organizer_balance", config.Lottery.OrganizerBalance)
		if errs != nil {
			return nil, errs
		}
		if _, errs = accounts.EnsureAccount(context.Background(), config.Lottery.Organizer, config.Lottery.OrganizerPassphrase, balance); errs != nil {
			return nil, fmt.Errorf("organizer account: %w", errs)
		}
	}
	return accounts, nil
}

func accountConfig(config Configuration) (service.AccountConfig, error) {
	var (
		c   = service.AccountConfig{ReceiveCount: config.User.ReceiveCount}
		err error
	)
	if c.DefaultBalance, err = etherToWei("user.default_balance", config.User.DefaultBalance); err != nil {
		return c, err
	}
	if c.ReceiveAmount, err = etherToWei("user.receive_amount", config.User.ReceiveAmount); err != nil {
		return c, err
	}
	if c.ReceiveLimit, err = etherToWei("user.receive_limit", config.User.ReceiveLimit); err != nil {
		return c, err
	}
	return c, nil
}

func etherToWei(key, value string) (model.Wei, error) {
	if value == "" {
		return 0, nil
	}
	wei, err := utils.ToWei(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return wei, nil
}

func NewArgon2Password(config Configuration) *argon2.Hasher {
	hash, err := argon2.New(
		argon2.WithVariantName(config.Argon2.Variant),
		argon2.WithT(config.Argon2.Iterations),
		argon2.WithM(uint32(config.Argon2.Memory)),
		argon2.WithP(config.Argon2.Parallelism),
		argon2.WithK(config.Argon2.KeyLength),
		argon2.WithS(config.Argon2.SaltLength),
	)

	if err != nil {
		panic(err)
	}
	return hash
}

func NewRedisClient(lc fx.Lifecycle, config Configuration) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DatabaseIndex,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewWebSocket() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func NewEmailSmtpAuth(c Configuration) smtp.Auth {
	return smtp.PlainAuth(c.Smtp.Identifier, c.Smtp.Username, c.Smtp.Password, c.Smtp.Host)
}

// NewLogger builds the production zap logger.
func NewLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}
