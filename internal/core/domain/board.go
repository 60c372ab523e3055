package domain

import "fmt"

// CardRef - ссылка на объект в колонке доски.
type CardRef struct {
	ID        string
	Index     int
	Address   string
	CoverURL  string
	Available bool
}

// Board - колонка канбан-доски.
type Board struct {
	Name  string
	Items []CardRef
}

// BoardFilters - фильтры запроса доски.
type BoardFilters struct {
	Address     string
	Available   bool
	Unavailable bool
}

// RemoteBucket - колонка в том виде, в котором ее отдает внешний API.
// BucketID == nil - колонка по умолчанию.
type RemoteBucket struct {
	BucketID *string
	Items    []CardRef
}

// BoardSet - все колонки доски пользователя в фиксированном порядке.
type BoardSet struct {
	Boards  []Board
	Filters BoardFilters
}

// GroupBuckets раскладывает ответ API по фиксированному словарю колонок.
// Колонки с неизвестными идентификаторами отбрасываются, порядок карточек сохраняется.
func GroupBuckets(names []string, sentinel string, remote []RemoteBucket) []Board {
	byName := make(map[string][]CardRef, len(remote))
	for _, rb := range remote {
		name := sentinel
		if rb.BucketID != nil {
			name = *rb.BucketID
		}
		byName[name] = append(byName[name], rb.Items...)
	}

	boards := make([]Board, 0, len(names))
	for _, name := range names {
		items := append([]CardRef{}, byName[name]...)
		boards = append(boards, Board{Name: name, Items: items})
	}
	return boards
}

// Clone - глубокая копия набора колонок.
func (s BoardSet) Clone() BoardSet {
	out := BoardSet{Filters: s.Filters, Boards: make([]Board, len(s.Boards))}
	for i, b := range s.Boards {
		out.Boards[i] = Board{Name: b.Name, Items: append([]CardRef{}, b.Items...)}
	}
	return out
}

// Find ищет колонку по имени.
func (s *BoardSet) Find(name string) (*Board, bool) {
	for i := range s.Boards {
		if s.Boards[i].Name == name {
			return &s.Boards[i], true
		}
	}
	return nil, false
}

// Locate ищет карточку объекта и возвращает колонку и позицию в ней.
func (s *BoardSet) Locate(propertyID string) (bucket string, position int, card CardRef, ok bool) {
	for _, b := range s.Boards {
		for i, c := range b.Items {
			if c.ID == propertyID {
				return b.Name, i, c, true
			}
		}
	}
	return "", 0, CardRef{}, false
}

// Move вырезает карточку из колонки-источника и вставляет ее в колонку назначения.
// Индекс назначения за пределами колонки прижимается к ее концу.
func (s *BoardSet) Move(source string, sourceIndex int, dest string, destIndex int) (CardRef, error) {
	src, ok := s.Find(source)
	if !ok {
		return CardRef{}, fmt.Errorf("%w: %q", ErrBucketUnknown, source)
	}
	dst, ok := s.Find(dest)
	if !ok {
		return CardRef{}, fmt.Errorf("%w: %q", ErrBucketUnknown, dest)
	}
	if sourceIndex < 0 || sourceIndex >= len(src.Items) {
		return CardRef{}, fmt.Errorf("%w: index %d in bucket %q", ErrCardNotFound, sourceIndex, source)
	}
	if destIndex < 0 {
		return CardRef{}, fmt.Errorf("%w: negative destination index %d", ErrValidation, destIndex)
	}

	card := src.Items[sourceIndex]
	src.Items = append(src.Items[:sourceIndex:sourceIndex], src.Items[sourceIndex+1:]...)

	if destIndex > len(dst.Items) {
		destIndex = len(dst.Items)
	}
	card.Index = destIndex
	dst.Items = append(dst.Items[:destIndex:destIndex], append([]CardRef{card}, dst.Items[destIndex:]...)...)
	return card, nil
}
