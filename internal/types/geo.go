package types

import (
	"fmt"
	"math"
)

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lng, 0) {
		return fmt.Errorf("%w: non-finite coordinate", ErrInvalidInput)
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, l.Lng)
	}
	return nil
}

// String renders "lat,lng", the form accepted by the Maps APIs.
func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}
