package constants

// SentinelBucket - колонка по умолчанию ("без статуса"), в API ей соответствует bucketId = null.
const SentinelBucket = "Sem status"

// BoardBuckets - фиксированный словарь колонок доски в порядке отображения.
// Набор колонок задает клиент, колонки с другими идентификаторами из API не показываются.
var BoardBuckets = []string{
	SentinelBucket,
	"Gostei",
	"Visita",
	"Proposta",
	"Descartado",
}
