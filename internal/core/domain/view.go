package domain

// FieldUpdate - одна запись в черновик по точечному пути.
type FieldUpdate struct {
	Path  string
	Value any
}

// WizardView - снимок сессии мастера для отображения клиенту.
type WizardView struct {
	SessionID     string
	Flow          Flow
	PropertyID    string
	Steps         []Step
	Current       Step
	Index         int
	CanBack       bool
	CanNext       bool
	CanSubmit     bool
	Draft         Property
	Images        []Image
	ImportURL     string
	MissingFields []string

	// Виды стоимости, которые показываются и обязательны для текущего режима черновика.
	AvailableCosts []CostKind
	RequiredCosts  []CostKind
}

// View строит снимок состояния, не разделяющий память с самим состоянием.
func (w *WizardState) View(sessionID string) WizardView {
	return WizardView{
		SessionID:     sessionID,
		Flow:          w.Flow,
		PropertyID:    w.PropertyID,
		Steps:         w.Steps(),
		Current:       w.Current(),
		Index:         w.current,
		CanBack:       w.CanBack(),
		CanNext:       w.CanNext(),
		CanSubmit:     w.IsLast(),
		Draft:         w.Draft.Clone(),
		Images:        append([]Image{}, w.UploadedImages...),
		ImportURL:     w.ImportURL,
		MissingFields: MissingFields(w.Draft, w.Current()),

		AvailableCosts: AvailableCostKinds(w.Draft.Mode),
		RequiredCosts:  RequiredCostKinds(w.Draft.Mode),
	}
}

// DragResult - результат перетаскивания карточки на доске.
// DestBucket == nil - карточку отпустили вне колонок.
type DragResult struct {
	SourceBucket string
	SourceIndex  int
	DestBucket   *string
	DestIndex    int
}

// UploadResult - итог загрузки пачки файлов.
type UploadResult struct {
	View     WizardView
	Uploaded int
	Failed   int
}
