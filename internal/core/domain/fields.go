package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RegisterField записывает значение по точечному пути в структурированный черновик.
// Пустое значение (nil или "") очищает поле. Последняя запись побеждает.
func (w *WizardState) RegisterField(path string, value any) error {
	d := &w.Draft
	section, name, _ := strings.Cut(path, ".")

	switch section {
	case "address":
		return setString(path, value, &d.Address)
	case "provider":
		return setString(path, value, &d.Provider)
	case "mode":
		var s string
		if err := setString(path, value, &s); err != nil {
			return err
		}
		if s == "" {
			d.Mode = ""
			return nil
		}
		m, ok := ParseMode(s)
		if !ok {
			return fieldError(path, "unknown mode %q", s)
		}
		d.Mode = m
		return nil
	case "information":
		return w.registerInformation(path, name, value)
	case "costs":
		kind, ok := ParseCostKind(name)
		if !ok {
			return fieldError(path, "unknown cost kind")
		}
		v, err := toFloat(value)
		if err != nil {
			return fieldError(path, "%v", err)
		}
		if v == nil {
			delete(d.Costs, kind)
			return nil
		}
		if d.Costs == nil {
			d.Costs = make(Costs)
		}
		d.Costs[kind] = *v
		return nil
	case "images":
		// images.<index>.description
		idxStr, attr, _ := strings.Cut(name, ".")
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(w.UploadedImages) || attr != "description" {
			return fieldError(path, "unknown image field")
		}
		return setString(path, value, &w.UploadedImages[idx].Description)
	}
	return fieldError(path, "unknown field")
}

func (w *WizardState) registerInformation(path, name string, value any) error {
	info := &w.Draft.Information
	switch name {
	case "bedrooms":
		return setInt(path, value, &info.Bedrooms)
	case "bathrooms":
		return setInt(path, value, &info.Bathrooms)
	case "parkingSlots":
		return setInt(path, value, &info.ParkingSlots)
	case "floor":
		return setInt(path, value, &info.Floor)
	case "totalArea":
		v, err := toFloat(value)
		if err != nil {
			return fieldError(path, "%v", err)
		}
		info.TotalArea = v
		return nil
	case "description":
		return setString(path, value, &info.Description)
	case "acceptPets":
		return setBool(path, value, &info.AcceptPets)
	case "isFurnished":
		return setBool(path, value, &info.IsFurnished)
	case "nearSubway":
		return setBool(path, value, &info.NearSubway)
	}
	return fieldError(path, "unknown field")
}

func fieldError(path, format string, args ...any) error {
	return fmt.Errorf("%w: field %q: %s", ErrValidation, path, fmt.Sprintf(format, args...))
}

func setString(path string, value any, dst *string) error {
	switch v := value.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = v
	default:
		return fieldError(path, "expected string, got %T", value)
	}
	return nil
}

func setInt(path string, value any, dst **int) error {
	v, err := toFloat(value)
	if err != nil {
		return fieldError(path, "%v", err)
	}
	if v == nil {
		*dst = nil
		return nil
	}
	if *v != math.Trunc(*v) {
		return fieldError(path, "expected integer, got %v", *v)
	}
	if *v < math.MinInt32 || *v > math.MaxInt32 {
		return fieldError(path, "integer %v is out of range", *v)
	}
	n := int(*v)
	*dst = &n
	return nil
}

func setBool(path string, value any, dst *bool) error {
	switch v := value.(type) {
	case nil:
		*dst = false
	case bool:
		*dst = v
	case string:
		if v == "" {
			*dst = false
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fieldError(path, "expected boolean, got %q", v)
		}
		*dst = b
	default:
		return fieldError(path, "expected boolean, got %T", value)
	}
	return nil
}

// toFloat принимает числа из JSON (float64), целые и строки из полей формы.
func toFloat(value any) (*float64, error) {
	var f float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", v)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("expected finite number")
	}
	return &f, nil
}
