package entity

import "time"

// Sector representa un sub-stock de un hotel (cocina, gobernanta, bar...).
// Se abastece por entregas desde la bodega principal.
type Sector struct {
	ID        string
	HotelID   string
	Name      string
	CreatedAt time.Time
}

// MainWarehouse es el SectorID que identifica la bodega principal del hotel.
const MainWarehouse = ""

// Location es la bodega principal (SectorID vacío) o un sector del hotel.
// El stock de un producto se controla de forma independiente por Location.
type Location struct {
	SectorID string `json:"sector_id"`
	Name     string `json:"name"`
}

// IsMain indica si la ubicación es la bodega principal.
func (l Location) IsMain() bool { return l.SectorID == MainWarehouse }

// MainLocation construye la ubicación de la bodega principal.
func MainLocation() Location {
	return Location{SectorID: MainWarehouse, Name: "Bodega principal"}
}

// SectorLocation construye la ubicación de un sector.
func SectorLocation(s Sector) Location {
	return Location{SectorID: s.ID, Name: s.Name}
}
