package repositories

import (
	"math"
	"sort"

	"lapak/internal/models"
)

const earthRadiusKm = 6371.0

// haversineKm computes the great-circle distance between two points in km.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// applyGeo filters products to those within radiusKm of (lat, lng) and sorts
// them by ascending distance. Shared by the GORM and in-memory repositories;
// neither backing store has a native geospatial index.
func applyGeo(products []models.Product, lat, lng float64, radiusKm int) []models.Product {
	type withDistance struct {
		product  models.Product
		distance float64
	}
	near := make([]withDistance, 0, len(products))
	for _, p := range products {
		d := haversineKm(lat, lng, p.Location.Lat(), p.Location.Lng())
		if d <= float64(radiusKm) {
			near = append(near, withDistance{product: p, distance: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		return near[i].distance < near[j].distance
	})
	out := make([]models.Product, len(near))
	for i, n := range near {
		out[i] = n.product
	}
	return out
}

// sortProducts orders products in place for one of the Sort* orders.
func sortProducts(products []models.Product, order string) {
	sort.SliceStable(products, func(i, j int) bool {
		switch order {
		case SortPriceAsc:
			return products[i].Price < products[j].Price
		case SortPriceDesc:
			return products[i].Price > products[j].Price
		case SortDateAsc:
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		default: // SortDateDesc
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
	})
}

// paginate slices one page out of products. Out-of-range pages yield an empty
// slice, never an error.
func paginate(products []models.Product, page, limit int) []models.Product {
	start := (page - 1) * limit
	if start >= len(products) {
		return []models.Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}
