package domain

// Mode - тип сделки, для которой выставлен объект.
type Mode string

const (
	ModeRent Mode = "aluguel"
	ModeSell Mode = "compra"
	ModeBoth Mode = "both"
)

// ProviderOwn - источник данных для объектов, заведенных вручную.
const ProviderOwn = "own"

// ParseMode проверяет, что строка является одним из известных режимов.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeRent, ModeSell, ModeBoth:
		return Mode(s), true
	}
	return "", false
}

// ModeFromFlags выводит режим из пары флагов isRent/isSell.
// Если оба флага выключены, режим не определен (пустая строка).
func ModeFromFlags(isRent, isSell bool) Mode {
	switch {
	case isRent && isSell:
		return ModeBoth
	case isRent:
		return ModeRent
	case isSell:
		return ModeSell
	default:
		return ""
	}
}

// Flags - обратное преобразование режима в isRent/isSell.
func (m Mode) Flags() (isRent, isSell bool) {
	switch m {
	case ModeRent:
		return true, false
	case ModeSell:
		return false, true
	case ModeBoth:
		return true, true
	}
	return false, false
}

// Information - вторичные характеристики объекта.
// Числовые поля - указатели: nil означает "не заполнено", что важно для проверки обязательных полей.
type Information struct {
	Bedrooms     *int
	Bathrooms    *int
	ParkingSlots *int
	TotalArea    *float64
	Floor        *int
	Description  string
	AcceptPets   bool
	IsFurnished  bool
	NearSubway   bool
}

// Image - ссылка на загруженное изображение. Первое изображение в списке - обложка.
type Image struct {
	URL         string
	Description string
}

// BoardAssignment - колонка канбан-доски и позиция в ней.
// BucketID == nil означает колонку по умолчанию ("Sem status").
type BoardAssignment struct {
	BucketID *string
	Index    int
}

// Property - редактируемая сущность.
type Property struct {
	ID              string
	Address         string
	Mode            Mode
	Information     Information
	Costs           Costs
	Images          []Image
	Provider        string
	Available       bool
	BoardAssignment BoardAssignment
}

// Clone возвращает глубокую копию, чтобы черновик не делил срезы и карты с источником.
func (p Property) Clone() Property {
	out := p
	out.Information = p.Information.clone()
	out.Costs = p.Costs.Clone()
	if p.Images != nil {
		out.Images = append([]Image(nil), p.Images...)
	}
	if p.BoardAssignment.BucketID != nil {
		id := *p.BoardAssignment.BucketID
		out.BoardAssignment.BucketID = &id
	}
	return out
}

func (i Information) clone() Information {
	out := i
	out.Bedrooms = cloneInt(i.Bedrooms)
	out.Bathrooms = cloneInt(i.Bathrooms)
	out.ParkingSlots = cloneInt(i.ParkingSlots)
	out.Floor = cloneInt(i.Floor)
	if i.TotalArea != nil {
		v := *i.TotalArea
		out.TotalArea = &v
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PropertyPayload - итоговые данные, которые уходят во внешний API при создании/обновлении.
type PropertyPayload struct {
	Address     string
	IsRent      bool
	IsSell      bool
	Information Information
	Costs       Costs
	Images      []Image
	Provider    string
}

// Credential - учетные данные пользователя, которые явно передаются в каждый удаленный вызов.
type Credential struct {
	UserID string
	Token  string
}

// UploadFile - бинарный файл изображения, который нужно отправить в сервис загрузки.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}
