package config

import "os"

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	DatabaseURL string
	RabbitMQURL string
	QueueName   string
	HealthPort  string
}

func LoadRelayConfig() *RelayConfig {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	queueName := os.Getenv("APPOINTMENT_QUEUE_NAME")
	if queueName == "" {
		queueName = "appointments.booked"
	}

	healthPort := os.Getenv("RELAY_HEALTH_PORT")
	if healthPort == "" {
		healthPort = "8090"
	}

	return &RelayConfig{
		DatabaseURL: dbURL,
		RabbitMQURL: rabbitURL,
		QueueName:   queueName,
		HealthPort:  healthPort,
	}
}
