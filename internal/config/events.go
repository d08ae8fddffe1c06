package config

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

func NewEventsConfig() *EventsConfig {
	return &EventsConfig{
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		Exchange:    getEnv("EVENTS_EXCHANGE", "interview.events"),
	}
}
