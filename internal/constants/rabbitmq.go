package constants

// Обменник доменных событий. Ключ маршрутизации - тип события (property.created и т.д.).
const (
	EventsExchange     = "listing_organizer_exchange"
	EventsExchangeType = "topic"
)
