package port

// Fields - структурированные данные для записи в лог.
type Fields map[string]interface{}

// LoggerPort - контракт системы логирования, которым пользуются ядро и адаптеры.
type LoggerPort interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error принимает ошибку отдельным аргументом, адаптеры кладут ее в поле "error".
	Error(msg string, err error, fields Fields)
	// WithFields создает новый логгер с добавленными полями.
	WithFields(fields Fields) LoggerPort
}
