package domain

// CostKind - вид стоимости.
type CostKind string

const (
	CostRent        CostKind = "rentValue"
	CostCondominium CostKind = "condominiumValue"
	CostIPTU        CostKind = "iptuValue"
	CostSellPrice   CostKind = "sellPrice"
)

// costRule описывает, в каких режимах вид стоимости показывается и в каких он обязателен.
type costRule struct {
	kind      CostKind
	available map[Mode]bool
	required  map[Mode]bool
}

var allModes = map[Mode]bool{ModeRent: true, ModeSell: true, ModeBoth: true}

// Порядок важен: в нем виды стоимости отдаются клиенту.
var costRules = []costRule{
	{
		kind:      CostRent,
		available: map[Mode]bool{ModeRent: true, ModeBoth: true},
		required:  map[Mode]bool{ModeRent: true, ModeBoth: true},
	},
	{
		kind:      CostCondominium,
		available: allModes,
		required:  map[Mode]bool{},
	},
	{
		kind:      CostIPTU,
		available: allModes,
		required:  map[Mode]bool{},
	},
	{
		kind:      CostSellPrice,
		available: map[Mode]bool{ModeSell: true, ModeBoth: true},
		required:  map[Mode]bool{ModeSell: true, ModeBoth: true},
	},
}

// ParseCostKind проверяет имя вида стоимости.
func ParseCostKind(s string) (CostKind, bool) {
	for _, r := range costRules {
		if string(r.kind) == s {
			return r.kind, true
		}
	}
	return "", false
}

// IsAvailable - предикат доступности вида стоимости для режима.
func (k CostKind) IsAvailable(m Mode) bool {
	for _, r := range costRules {
		if r.kind == k {
			return r.available[m]
		}
	}
	return false
}

// IsRequired - обязателен ли вид стоимости в данном режиме.
func (k CostKind) IsRequired(m Mode) bool {
	for _, r := range costRules {
		if r.kind == k {
			return r.required[m]
		}
	}
	return false
}

// AvailableCostKinds - виды стоимости, которые показываются для режима.
func AvailableCostKinds(m Mode) []CostKind {
	var kinds []CostKind
	for _, r := range costRules {
		if r.available[m] {
			kinds = append(kinds, r.kind)
		}
	}
	return kinds
}

// RequiredCostKinds - виды стоимости, обязательные для режима.
func RequiredCostKinds(m Mode) []CostKind {
	var kinds []CostKind
	for _, r := range costRules {
		if r.required[m] {
			kinds = append(kinds, r.kind)
		}
	}
	return kinds
}

// Costs - значения стоимостей. Отсутствие ключа означает "не заполнено".
type Costs map[CostKind]float64

// Clone копирует карту.
func (c Costs) Clone() Costs {
	if c == nil {
		return nil
	}
	out := make(Costs, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ForMode оставляет только те виды стоимости, которые доступны в режиме.
func (c Costs) ForMode(m Mode) Costs {
	out := make(Costs)
	for k, v := range c {
		if k.IsAvailable(m) {
			out[k] = v
		}
	}
	return out
}
