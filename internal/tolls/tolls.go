// Package tolls estimates highway toll costs for a driving route.
package tolls

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"financaszen/internal/core"
)

const (
	// EarthRadiusKm is the mean Earth radius used by Haversine.
	EarthRadiusKm = 6371.0
	// MatchRadiusKm is how close a route point must pass to count a plaza.
	MatchRadiusKm = 1.0
	// FallbackKm is the block length charged FallbackFee in the flat estimate.
	FallbackKm = 100.0
	// MaxDistanceKm bounds the distances the flat estimate accepts.
	MaxDistanceKm = 50000.0
)

// FallbackFee is charged per full FallbackKm when no plaza matches.
var FallbackFee = core.Cents(900)

//go:embed plazas.yaml
var plazaData []byte

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Plaza is a toll booth with its fee.
type Plaza struct {
	Name    string     `yaml:"name" json:"name"`
	Highway string     `yaml:"highway" json:"highway"`
	Lat     float64    `yaml:"lat" json:"lat"`
	Lng     float64    `yaml:"lng" json:"lng"`
	Fee     core.Money `yaml:"-" json:"fee"`
	RawFee  string     `yaml:"fee" json:"-"`
}

// Point returns the plaza location.
func (p Plaza) Point() Point { return Point{Lat: p.Lat, Lng: p.Lng} }

// Estimate is the result of a toll lookup.
type Estimate struct {
	Plazas     []Plaza    `json:"plazas"`
	Total      core.Money `json:"total"`
	DistanceKm float64    `json:"distanceKm"`
	Fallback   bool       `json:"fallback"`
}

// Estimator matches routes against a plaza table.
type Estimator struct {
	plazas []Plaza
	radius float64
}

// LoadPlazas parses a YAML plaza table.
func LoadPlazas(data []byte) ([]Plaza, error) {
	var doc struct {
		Plazas []Plaza `yaml:"plazas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plaza table: %w", err)
	}
	for i := range doc.Plazas {
		fee, err := core.ParseMoney(doc.Plazas[i].RawFee)
		if err != nil {
			return nil, fmt.Errorf("plaza %q: invalid fee %q: %w", doc.Plazas[i].Name, doc.Plazas[i].RawFee, err)
		}
		if !core.ValidCoordinates(doc.Plazas[i].Lat, doc.Plazas[i].Lng) {
			return nil, fmt.Errorf("plaza %q: %w", doc.Plazas[i].Name, core.ErrInvalidCoordinates)
		}
		doc.Plazas[i].Fee = fee
	}
	return doc.Plazas, nil
}

// NewEstimator builds an estimator over the given plazas.
func NewEstimator(plazas []Plaza) *Estimator {
	return &Estimator{plazas: plazas, radius: MatchRadiusKm}
}

// Default returns an estimator over the embedded plaza table.
func Default() (*Estimator, error) {
	plazas, err := LoadPlazas(plazaData)
	if err != nil {
		return nil, err
	}
	return NewEstimator(plazas), nil
}

// Plazas returns a copy of the table.
func (e *Estimator) Plazas() []Plaza {
	out := make([]Plaza, len(e.plazas))
	copy(out, e.plazas)
	return out
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// RouteDistance sums the legs between consecutive points.
func RouteDistance(points []Point) float64 {
	var d float64
	for i := 1; i < len(points); i++ {
		d += Haversine(points[i-1], points[i])
	}
	return d
}

// ValidDistance rejects distances the flat estimate cannot price.
func ValidDistance(km float64) error {
	if math.IsNaN(km) || km < 0 || km > MaxDistanceKm {
		return core.ErrInvalidDistance
	}
	return nil
}

// EstimateByDistance is the flat fallback: floor(km/100) * 9.00. Invalid
// distances count as zero and longer ones are capped at MaxDistanceKm.
func EstimateByDistance(km float64) Estimate {
	if math.IsNaN(km) || km < 0 {
		km = 0
	}
	km = math.Min(km, MaxDistanceKm)
	blocks := math.Floor(km / FallbackKm)
	return Estimate{
		Plazas:     []Plaza{},
		Total:      core.Cents(FallbackFee.Cents * int64(blocks)),
		DistanceKm: km,
		Fallback:   true,
	}
}

// EstimateRoute charges every plaza passed within the match radius once.
// A route with no matched plaza, or with fewer than two points, falls back
// to EstimateByDistance over the route length.
func (e *Estimator) EstimateRoute(points []Point) Estimate {
	distance := RouteDistance(points)
	if e == nil || len(points) < 2 {
		return EstimateByDistance(distance)
	}
	var matched []Plaza
	var total core.Money
	for _, plaza := range e.plazas {
		for _, p := range points {
			if Haversine(p, plaza.Point()) <= e.radius {
				matched = append(matched, plaza)
				total = total.Add(plaza.Fee)
				break
			}
		}
	}
	if len(matched) == 0 {
		return EstimateByDistance(distance)
	}
	return Estimate{Plazas: matched, Total: total, DistanceKm: distance}
}
