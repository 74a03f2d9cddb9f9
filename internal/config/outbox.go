package config

type Outbox struct {
	Enabled bool `env:"OUTBOX_ENABLED" envDefault:"false"`
}
