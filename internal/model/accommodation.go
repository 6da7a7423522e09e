package model

import "time"

type AccommodationType string

const (
	AccommodationTypeApartment AccommodationType = "APARTMENT"
	AccommodationTypeHouse     AccommodationType = "HOUSE"
	AccommodationTypeShared    AccommodationType = "SHARED"
	AccommodationTypeStudio    AccommodationType = "STUDIO"
)

func (t AccommodationType) Valid() bool {
	switch t {
	case AccommodationTypeApartment, AccommodationTypeHouse, AccommodationTypeShared, AccommodationTypeStudio:
		return true
	}
	return false
}

// Display возвращает человекочитаемое название типа
func (t AccommodationType) Display() string {
	switch t {
	case AccommodationTypeApartment:
		return "Apartment"
	case AccommodationTypeHouse:
		return "House"
	case AccommodationTypeShared:
		return "Shared Room"
	case AccommodationTypeStudio:
		return "Studio"
	default:
		return string(t)
	}
}

type Accommodation struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	BuildingName       string            `json:"building_name"`
	Description        string            `json:"description"`
	Type               AccommodationType `json:"type"`
	RoomNumber         string            `json:"room_number"`
	FlatNumber         string            `json:"flat_number"`
	FloorNumber        string            `json:"floor_number"`
	NumBedrooms        int               `json:"num_bedrooms"`
	NumBeds            int               `json:"num_beds"`
	Address            string            `json:"address"`
	GeoAddress         string            `json:"geo_address"`
	Latitude           float64           `json:"latitude"`
	Longitude          float64           `json:"longitude"`
	AvailableFrom      *time.Time        `json:"available_from"`
	AvailableTo        *time.Time        `json:"available_to"`
	MonthlyRent        int64             `json:"monthly_rent"` // в центах
	MinReservationDays int               `json:"min_reservation_days"`
	OwnerEmail         string            `json:"owner_email"`
	IsAvailable        bool              `json:"is_available"` // производное от слотов
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из таблицы accommodations)
	UniversityIDs []int64 `json:"university_ids,omitempty"`
}

// ServesUniversity проверяет, привязано ли жильё к университету
func (a *Accommodation) ServesUniversity(universityID int64) bool {
	for _, id := range a.UniversityIDs {
		if id == universityID {
			return true
		}
	}
	return false
}

// MeetsMinimumStay checks the inclusive length of [from, to] against MinReservationDays.
func (a *Accommodation) MeetsMinimumStay(from, to time.Time) bool {
	minDays := a.MinReservationDays
	if minDays < 1 {
		minDays = 1
	}
	return daysBetween(from, to)+1 >= minDays
}

type Owner struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
