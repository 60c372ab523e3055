package domain

import (
	"fmt"
	"strings"
)

// Step - шаг мастера добавления/редактирования объекта.
type Step int

const (
	StepImport Step = iota
	StepBasicInfo
	StepSecondaryInfo
	StepCosts
	StepPhotos
)

var stepNames = map[Step]string{
	StepImport:        "import",
	StepBasicInfo:     "basic_info",
	StepSecondaryInfo: "secondary_info",
	StepCosts:         "costs",
	StepPhotos:        "photos",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep переводит имя шага в значение перечисления.
func ParseStep(name string) (Step, bool) {
	for s, n := range stepNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Flow - сценарий мастера, определяет последовательность шагов.
type Flow string

const (
	FlowImport Flow = "import"
	FlowManual Flow = "manual"
	FlowEdit   Flow = "edit"
)

var contentSteps = []Step{StepBasicInfo, StepSecondaryInfo, StepCosts, StepPhotos}

// ParseFlow проверяет имя сценария.
func ParseFlow(s string) (Flow, bool) {
	switch Flow(s) {
	case FlowImport, FlowManual, FlowEdit:
		return Flow(s), true
	}
	return "", false
}

// Steps возвращает упорядоченную последовательность шагов сценария.
func (f Flow) Steps() []Step {
	if f == FlowImport {
		return append([]Step{StepImport}, contentSteps...)
	}
	return append([]Step(nil), contentSteps...)
}

// WizardState - состояние одной сессии мастера. Не потокобезопасно,
// синхронизацию обеспечивает вызывающая сторона.
type WizardState struct {
	Flow Flow
	// PropertyID заполняется только в сценарии редактирования.
	PropertyID     string
	Draft          Property
	UploadedImages []Image
	ImportURL      string

	steps        []Step
	current      int
	firstContent int
	prefill      *Property
}

// NewWizardState создает состояние в начальной точке сценария.
// prefill используется только для сценария редактирования.
func NewWizardState(flow Flow, prefill *Property) *WizardState {
	w := &WizardState{
		Flow:  flow,
		steps: flow.Steps(),
	}
	for i, s := range w.steps {
		if s != StepImport {
			w.firstContent = i
			break
		}
	}
	if prefill != nil {
		p := prefill.Clone()
		w.prefill = &p
		w.PropertyID = p.ID
	}
	w.Start()
	return w
}

// Steps - последовательность шагов этой сессии.
func (w *WizardState) Steps() []Step { return append([]Step(nil), w.steps...) }

// Current - текущий шаг.
func (w *WizardState) Current() Step { return w.steps[w.current] }

// Index - позиция текущего шага.
func (w *WizardState) Index() int { return w.current }

// IsLast - находится ли мастер на последнем шаге (только отсюда доступна отправка).
func (w *WizardState) IsLast() bool { return w.current == len(w.steps)-1 }

// CanBack - назад нельзя с первого содержательного шага и раньше.
func (w *WizardState) CanBack() bool { return w.current > w.firstContent }

// CanNext - вперед нельзя с последнего шага.
func (w *WizardState) CanNext() bool { return !w.IsLast() }

// HasStep - есть ли шаг в сценарии.
func (w *WizardState) HasStep(s Step) bool {
	return w.indexOf(s) >= 0
}

func (w *WizardState) indexOf(s Step) int {
	for i, st := range w.steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Start сбрасывает мастер на первый шаг и очищает черновик, изображения и URL импорта.
// В сценарии редактирования черновик заново заполняется исходным объектом.
func (w *WizardState) Start() {
	w.current = 0
	w.Draft = Property{}
	w.UploadedImages = nil
	w.ImportURL = ""
	if w.prefill != nil {
		w.Draft = w.prefill.Clone()
		w.UploadedImages = w.Draft.Images
		w.Draft.Images = nil
	}
}

// Next переходит на следующий шаг, если текущий шаг проходит проверку.
func (w *WizardState) Next() error {
	if !w.CanNext() {
		return fmt.Errorf("%w: next from last step %s", ErrStepUnavailable, w.Current())
	}
	if err := w.Validate(w.Current()); err != nil {
		return err
	}
	w.current++
	return nil
}

// Back возвращается на шаг назад без проверки.
func (w *WizardState) Back() error {
	if !w.CanBack() {
		return fmt.Errorf("%w: back from %s", ErrStepUnavailable, w.Current())
	}
	w.current--
	return nil
}

// ApplyImport целиком заменяет черновик и изображения результатом импорта
// и переводит мастер на шаг после импорта.
func (w *WizardState) ApplyImport(url string, imported Property) error {
	idx := w.indexOf(StepImport)
	if idx < 0 {
		return fmt.Errorf("%w: flow %s has no import step", ErrStepUnavailable, w.Flow)
	}
	draft := imported.Clone()
	w.UploadedImages = draft.Images
	draft.Images = nil
	draft.ID = ""
	w.Draft = draft
	w.ImportURL = url
	w.current = idx + 1
	return nil
}

// AppendImages добавляет ссылки на загруженные изображения в конец списка.
func (w *WizardState) AppendImages(images ...Image) {
	w.UploadedImages = append(w.UploadedImages, images...)
}

// Validate проверяет только обязательные поля указанного шага.
func (w *WizardState) Validate(step Step) error {
	missing := MissingFields(w.Draft, step)
	if len(missing) > 0 {
		return &ValidationError{Step: step, Fields: missing}
	}
	return nil
}

// MissingFields возвращает незаполненные обязательные поля шага.
func MissingFields(d Property, step Step) []string {
	var missing []string
	switch step {
	case StepBasicInfo:
		if strings.TrimSpace(d.Address) == "" {
			missing = append(missing, "address")
		}
		if d.Mode == "" {
			missing = append(missing, "mode")
		}
		if d.Information.TotalArea == nil {
			missing = append(missing, "information.totalArea")
		}
		if d.Information.Bedrooms == nil {
			missing = append(missing, "information.bedrooms")
		}
		if d.Information.Bathrooms == nil {
			missing = append(missing, "information.bathrooms")
		}
		if d.Information.ParkingSlots == nil {
			missing = append(missing, "information.parkingSlots")
		}
	case StepCosts:
		for _, kind := range RequiredCostKinds(d.Mode) {
			if _, ok := d.Costs[kind]; !ok {
				missing = append(missing, "costs."+string(kind))
			}
		}
	}
	return missing
}

// Payload собирает итоговые данные для отправки. Проверяет все шаги с обязательными полями.
func (w *WizardState) Payload() (PropertyPayload, error) {
	for _, step := range []Step{StepBasicInfo, StepCosts} {
		if err := w.Validate(step); err != nil {
			return PropertyPayload{}, err
		}
	}
	isRent, isSell := w.Draft.Mode.Flags()
	provider := w.Draft.Provider
	if provider == "" {
		provider = ProviderOwn
	}
	d := w.Draft.Clone()
	return PropertyPayload{
		Address:     d.Address,
		IsRent:      isRent,
		IsSell:      isSell,
		Information: d.Information,
		Costs:       d.Costs.ForMode(d.Mode),
		Images:      append([]Image{}, w.UploadedImages...),
		Provider:    provider,
	}, nil
}
