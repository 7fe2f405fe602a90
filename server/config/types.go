package config

// Configuration object extracted from YAML configuration file.
type Configuration struct {
	Server   Server              `mapstructure:"server"`
	Database Database            `mapstructure:"database"`
	Lottery  Lottery             `mapstructure:"lottery"`
	User     User                `mapstructure:"user"`
	Jwt      Jwt                 `mapstructure:"jwt"`
	Smtp     SMTPConfiguration   `mapstructure:"smtp"`
	Redis    *RedisConfiguration `mapstructure:"redis"`
	Argon2   Argon2Password      `mapstructure:"argon2"`
	Discord  Discord             `mapstructure:"discord"`
}

type Server struct {
	Port int `mapstructure:"port"`
}

// Database is the contract storage. An empty path means ~/.games/lottery.db.
type Database struct {
	Path string `mapstructure:"path"`
}

// Lottery amounts are decimal ether strings.
type Lottery struct {
	Organizer           string `mapstructure:"organizer"`
	OrganizerPassphrase string `mapstructure:"organizer_passphrase"`
	OrganizerBalance    string `mapstructure:"organizer_balance"`
	MinimumContribution string `mapstructure:"minimum_contribution"`
	HistoryLimit        int    `mapstructure:"history_limit"`
	HubBuffer           int    `mapstructure:"hub_buffer"`
}

// User amounts are decimal ether strings.
type User struct {
	DefaultBalance string `mapstructure:"default_balance"`
	ReceiveAmount  string `mapstructure:"receive_amount"`
	ReceiveLimit   string `mapstructure:"receive_limit"`
	ReceiveCount   int    `mapstructure:"receive_count"`
}

type Jwt struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// Argon2Password represents the argon2 hashing settings.
type Argon2Password struct {
	Variant     string `mapstructure:"variant"`
	Iterations  int    `mapstructure:"iterations"`
	Memory      int    `mapstructure:"memory"`
	Parallelism int    `mapstructure:"parallelism"`
	KeyLength   int    `mapstructure:"key_length"`
	SaltLength  int    `mapstructure:"salt_length"`
}

// RedisConfiguration represents the redis server used for event relay and
// faucet limits.
type RedisConfiguration struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	DatabaseIndex int    `mapstructure:"database_index"`
	EventChannel  string `mapstructure:"event_channel"`
}

// SMTPConfiguration represents the configuration of the SMTP server winner
// mails are sent with.
type SMTPConfiguration struct {
	Enabled    bool     `mapstructure:"enabled"`
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	Identifier string   `mapstructure:"identifier"`
	Sender     string   `mapstructure:"sender"`
	Recipients []string `mapstructure:"recipients"`
}

type Discord struct {
	Enabled   bool   `mapstructure:"enabled"`
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}
