package config

// Kafka is only loaded by the relay and events commands.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"inventory-events"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"inventory"`
}
