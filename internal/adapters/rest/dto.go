package rest

import (
	"listing-organizer/internal/core/domain"
)

type ErrorResponseDTO struct {
	Error  string   `json:"error"`
	Step   string   `json:"step,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// --- Мастер ---

type CreateWizardRequestDTO struct {
	Flow       string `json:"flow"`
	PropertyID string `json:"propertyId,omitempty"`
}

type ImportRequestDTO struct {
	URL string `json:"url"`
}

type InformationDTO struct {
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	ParkingSlots *int     `json:"parkingSlots"`
	TotalArea    *float64 `json:"totalArea"`
	Floor        *int     `json:"floor"`
	Description  string   `json:"description"`
	AcceptPets   bool     `json:"acceptPets"`
	IsFurnished  bool     `json:"isFurnished"`
	NearSubway   bool     `json:"nearSubway"`
}

type ImageDTO struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type BoardAssignmentDTO struct {
	BucketID *string `json:"bucketId"`
	Index    int     `json:"index"`
}

type PropertyDTO struct {
	ID              string             `json:"id,omitempty"`
	Address         string             `json:"address"`
	Mode            string             `json:"mode"`
	Information     InformationDTO     `json:"information"`
	Costs           map[string]float64 `json:"costs"`
	Images          []ImageDTO         `json:"images"`
	Provider        string             `json:"provider"`
	Available       bool               `json:"available"`
	BoardAssignment BoardAssignmentDTO `json:"boardAssignment"`
}

type WizardViewDTO struct {
	SessionID     string      `json:"sessionId"`
	Flow          string      `json:"flow"`
	PropertyID    string      `json:"propertyId,omitempty"`
	Steps         []string    `json:"steps"`
	Current       string      `json:"current"`
	Index         int         `json:"index"`
	CanBack       bool        `json:"canBack"`
	CanNext       bool        `json:"canNext"`
	CanSubmit     bool        `json:"canSubmit"`
	Draft         PropertyDTO `json:"draft"`
	Images        []ImageDTO  `json:"images"`
	ImportURL     string      `json:"importUrl,omitempty"`
	MissingFields []string    `json:"missingFields"`

	// Виды стоимости для режима черновика: что показать и что обязательно.
	AvailableCosts []string `json:"availableCosts"`
	RequiredCosts  []string `json:"requiredCosts"`
}

type UploadResponseDTO struct {
	Wizard   WizardViewDTO `json:"wizard"`
	Uploaded int           `json:"uploaded"`
	Failed   int           `json:"failed"`
}

type ValidationResponseDTO struct {
	Step          string   `json:"step"`
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missingFields"`
}

type SubmitResponseDTO struct {
	PropertyID string `json:"propertyId"`
}

// --- Доска ---

type BoardFiltersDTO struct {
	Address     string `json:"address"`
	Available   bool   `json:"available"`
	Unavailable bool   `json:"unavailable"`
}

type CardDTO struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Address   string `json:"address"`
	CoverURL  string `json:"coverUrl,omitempty"`
	Available bool   `json:"available"`
}

type BoardDTO struct {
	Name  string    `json:"name"`
	Items []CardDTO `json:"items"`
}

type BoardSetDTO struct {
	Boards  []BoardDTO      `json:"boards"`
	Filters BoardFiltersDTO `json:"filters"`
}

type MoveRequestDTO struct {
	SourceBucket string  `json:"sourceBucket"`
	SourceIndex  int     `json:"sourceIndex"`
	DestBucket   *string `json:"destBucket"`
	DestIndex    int     `json:"destIndex"`
}

type ReassignRequestDTO struct {
	Bucket string `json:"bucket"`
}

// --- Преобразования ---

func toImagesDTO(images []domain.Image) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageDTO{URL: img.URL, Description: img.Description})
	}
	return out
}

func toPropertyDTO(p domain.Property) PropertyDTO {
	costs := make(map[string]float64, len(p.Costs))
	for kind, v := range p.Costs {
		costs[string(kind)] = v
	}
	info := p.Information
	return PropertyDTO{
		ID:      p.ID,
		Address: p.Address,
		Mode:    string(p.Mode),
		Information: InformationDTO{
			Bedrooms:     info.Bedrooms,
			Bathrooms:    info.Bathrooms,
			ParkingSlots: info.ParkingSlots,
			TotalArea:    info.TotalArea,
			Floor:        info.Floor,
			Description:  info.Description,
			AcceptPets:   info.AcceptPets,
			IsFurnished:  info.IsFurnished,
			NearSubway:   info.NearSubway,
		},
		Costs:     costs,
		Images:    toImagesDTO(p.Images),
		Provider:  p.Provider,
		Available: p.Available,
		BoardAssignment: BoardAssignmentDTO{
			BucketID: p.BoardAssignment.BucketID,
			Index:    p.BoardAssignment.Index,
		},
	}
}

func costKindNames(kinds []domain.CostKind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}

func toWizardViewDTO(v domain.WizardView) WizardViewDTO {
	steps := make([]string, 0, len(v.Steps))
	for _, s := range v.Steps {
		steps = append(steps, s.String())
	}
	missing := v.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return WizardViewDTO{
		SessionID:     v.SessionID,
		Flow:          string(v.Flow),
		PropertyID:    v.PropertyID,
		Steps:         steps,
		Current:       v.Current.String(),
		Index:         v.Index,
		CanBack:       v.CanBack,
		CanNext:       v.CanNext,
		CanSubmit:     v.CanSubmit,
		Draft:         toPropertyDTO(v.Draft),
		Images:        toImagesDTO(v.Images),
		ImportURL:     v.ImportURL,
		MissingFields: missing,

		AvailableCosts: costKindNames(v.AvailableCosts),
		RequiredCosts:  costKindNames(v.RequiredCosts),
	}
}

func toBoardSetDTO(s domain.BoardSet) BoardSetDTO {
	boards := make([]BoardDTO, 0, len(s.Boards))
	for _, b := range s.Boards {
		items := make([]CardDTO, 0, len(b.Items))
		for _, c := range b.Items {
			items = append(items, CardDTO{ID: c.ID, Index: c.Index, Address: c.Address, CoverURL: c.CoverURL, Available: c.Available})
		}
		boards = append(boards, BoardDTO{Name: b.Name, Items: items})
	}
	return BoardSetDTO{
		Boards: boards,
		Filters: BoardFiltersDTO{
			Address:     s.Filters.Address,
			Available:   s.Filters.Available,
			Unavailable: s.Filters.Unavailable,
		},
	}
}
