package usecase

import (
	"listing-organizer/internal/core/domain"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeAddress приводит адрес к виду для сравнения: NFC, свертка регистра, без крайних пробелов.
// "Rua São Paulo" и "RUA SÃO PAULO" дают одну и ту же строку.
func normalizeAddress(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// sameFilters - фильтры, для которых повторная загрузка доски ничего не изменит.
func sameFilters(a, b domain.BoardFilters) bool {
	return a.Available == b.Available &&
		a.Unavailable == b.Unavailable &&
		normalizeAddress(a.Address) == normalizeAddress(b.Address)
}
