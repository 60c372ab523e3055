package listings_api_client

import "listing-organizer/internal/core/domain"

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
	Description string `json:"description,omitempty"`
}

type BoardAssignmentDTO struct {
	BucketID *string `json:"bucketId"`
	Index    int     `json:"index"`
}

// PropertyResponse - объект в том виде, как его отдают extract и GET /properties/{id}.
type PropertyResponse struct {
	ID              string              `json:"id"`
	Address         string              `json:"address"`
	IsRent          bool                `json:"isRent"`
	IsSell          bool                `json:"isSell"`
	Information     InformationDTO      `json:"information"`
	Costs           map[string]*float64 `json:"costs"`
	Images          []ImageDTO          `json:"images"`
	Provider        string              `json:"provider"`
	Available       *bool               `json:"available"`
	BoardAssignment *BoardAssignmentDTO `json:"boardAssignment"`
}

// PropertyRequest - тело create/update.
type PropertyRequest struct {
	Address     string             `json:"address"`
	IsRent      bool               `json:"isRent"`
	IsSell      bool               `json:"isSell"`
	Information InformationDTO     `json:"information"`
	Costs       map[string]float64 `json:"costs"`
	Images      []ImageDTO         `json:"images"`
	Provider    string             `json:"provider"`
}

type CreatePropertyResponse struct {
	ID string `json:"id"`
}

type UploadImagesResponse struct {
	Images []ImageDTO `json:"images"`
}

type CardRefDTO struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Address   string `json:"address"`
	CoverURL  string `json:"coverUrl"`
	Available *bool  `json:"available"`
}

type BucketDTO struct {
	BucketID *string      `json:"bucketId"`
	Items    []CardRefDTO `json:"items"`
}

type BoardsResponse struct {
	Buckets []BucketDTO `json:"buckets"`
}

type AvailabilityRequest struct {
	Available bool `json:"available"`
}

func toDomainProperty(dto PropertyResponse) *domain.Property {
	p := &domain.Property{
		ID:          dto.ID,
		Address:     dto.Address,
		Mode:        domain.ModeFromFlags(dto.IsRent, dto.IsSell),
		Information: dto.Information.toDomain(),
		Provider:    dto.Provider,
		Available:   true,
	}
	if dto.Available != nil {
		p.Available = *dto.Available
	}
	for name, value := range dto.Costs {
		kind, ok := domain.ParseCostKind(name)
		if !ok || value == nil {
			continue
		}
		if p.Costs == nil {
			p.Costs = make(domain.Costs)
		}
		p.Costs[kind] = *value
	}
	for _, img := range dto.Images {
		p.Images = append(p.Images, domain.Image{URL: img.URL, Description: img.Description})
	}
	if dto.BoardAssignment != nil {
		p.BoardAssignment = domain.BoardAssignment{BucketID: dto.BoardAssignment.BucketID, Index: dto.BoardAssignment.Index}
	}
	return p
}

func (i InformationDTO) toDomain() domain.Information {
	return domain.Information{
		Bedrooms:     i.Bedrooms,
		Bathrooms:    i.Bathrooms,
		ParkingSlots: i.ParkingSlots,
		TotalArea:    i.TotalArea,
		Floor:        i.Floor,
		Description:  i.Description,
		AcceptPets:   i.AcceptPets,
		IsFurnished:  i.IsFurnished,
		NearSubway:   i.NearSubway,
	}
}

func fromDomainPayload(p domain.PropertyPayload) PropertyRequest {
	req := PropertyRequest{
		Address: p.Address,
		IsRent:  p.IsRent,
		IsSell:  p.IsSell,
		Information: InformationDTO{
			Bedrooms:     p.Information.Bedrooms,
			Bathrooms:    p.Information.Bathrooms,
			ParkingSlots: p.Information.ParkingSlots,
			TotalArea:    p.Information.TotalArea,
			Floor:        p.Information.Floor,
			Description:  p.Information.Description,
			AcceptPets:   p.Information.AcceptPets,
			IsFurnished:  p.Information.IsFurnished,
			NearSubway:   p.Information.NearSubway,
		},
		Costs:    make(map[string]float64, len(p.Costs)),
		Images:   make([]ImageDTO, 0, len(p.Images)),
		Provider: p.Provider,
	}
	for kind, value := range p.Costs {
		req.Costs[string(kind)] = value
	}
	for _, img := range p.Images {
		req.Images = append(req.Images, ImageDTO{URL: img.URL, Description: img.Description})
	}
	return req
}

func toDomainBuckets(resp BoardsResponse) []domain.RemoteBucket {
	buckets := make([]domain.RemoteBucket, 0, len(resp.Buckets))
	for _, b := range resp.Buckets {
		rb := domain.RemoteBucket{BucketID: b.BucketID, Items: make([]domain.CardRef, 0, len(b.Items))}
		for _, item := range b.Items {
			card := domain.CardRef{ID: item.ID, Index: item.Index, Address: item.Address, CoverURL: item.CoverURL, Available: true}
			if item.Available != nil {
				card.Available = *item.Available
			}
			rb.Items = append(rb.Items, card)
		}
		buckets = append(buckets, rb)
	}
	return buckets
}
