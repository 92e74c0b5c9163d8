package services

import (
	"github.com/quickdate/admin-api/internal/store"
)

type countryBox struct {
	code           string
	name           string
	minLat, maxLat float64
	minLng, maxLng float64
}

// Coarse bounding boxes for the markets the dashboard cares about. Boxes
// overlap; guessCountry picks the smallest match so enclosed countries win
// over their neighbours.
var countryBoxes = []countryBox{
	{"US", "United States", 24.5, 49.4, -125.0, -66.9},
	{"CA", "Canada", 41.7, 83.1, -141.0, -52.6},
	{"MX", "Mexico", 14.5, 32.7, -118.4, -86.7},
	{"BR", "Brazil", -33.8, 5.3, -73.9, -34.8},
	{"GB", "United Kingdom", 49.9, 60.9, -8.6, 1.8},
	{"FR", "France", 41.3, 51.1, -5.1, 9.6},
	{"DE", "Germany", 47.3, 55.1, 5.9, 15.0},
	{"ES", "Spain", 36.0, 43.8, -9.3, 3.3},
	{"IT", "Italy", 36.6, 47.1, 6.6, 18.5},
	{"NL", "Netherlands", 50.8, 53.6, 3.4, 7.2},
	{"SE", "Sweden", 55.3, 69.1, 11.1, 24.2},
	{"PL", "Poland", 49.0, 54.8, 14.1, 24.2},
	{"UA", "Ukraine", 44.4, 52.4, 22.1, 40.2},
	{"TR", "Turkey", 36.0, 42.1, 26.0, 44.8},
	{"RU", "Russia", 41.2, 81.9, 19.6, 180.0},
	{"IN", "India", 6.7, 35.5, 68.1, 97.4},
	{"CN", "China", 18.2, 53.6, 73.7, 134.8},
	{"JP", "Japan", 24.2, 45.5, 122.9, 145.8},
	{"KR", "South Korea", 33.1, 38.6, 125.1, 129.6},
	{"ID", "Indonesia", -11.0, 6.1, 95.0, 141.0},
	{"PH", "Philippines", 4.6, 21.1, 116.9, 126.6},
	{"TH", "Thailand", 5.6, 20.5, 97.3, 105.6},
	{"VN", "Vietnam", 8.6, 23.4, 102.1, 109.5},
	{"AU", "Australia", -43.6, -10.7, 113.2, 153.6},
	{"NZ", "New Zealand", -47.3, -34.4, 166.4, 178.6},
	{"ZA", "South Africa", -34.8, -22.1, 16.5, 32.9},
	{"NG", "Nigeria", 4.3, 13.9, 2.7, 14.7},
	{"EG", "Egypt", 22.0, 31.7, 25.0, 36.9},
	{"AE", "United Arab Emirates", 22.6, 26.1, 51.5, 56.4},
	{"SA", "Saudi Arabia", 16.3, 32.2, 34.5, 55.7},
	{"AR", "Argentina", -55.1, -21.8, -73.6, -53.6},
	{"CO", "Colombia", -4.2, 13.4, -79.0, -66.9},
}

// guessCountry maps a coordinate to the smallest bounding box containing it.
func guessCountry(lat, lng float64) (code, name string, ok bool) {
	bestArea := 0.0
	for _, b := range countryBoxes {
		if lat < b.minLat || lat > b.maxLat || lng < b.minLng || lng > b.maxLng {
			continue
		}
		area := (b.maxLat - b.minLat) * (b.maxLng - b.minLng)
		if !ok || area < bestArea {
			code, name, ok = b.code, b.name, true
			bestArea = area
		}
	}
	return code, name, ok
}

// coordsFrom digs a lat/lng pair out of the shapes user documents use:
// nested location/geo/position objects with latitude/longitude,
// _latitude/_longitude, or flat lat/lng fields, any of them possibly strings.
func coordsFrom(data map[string]interface{}) (lat, lng float64, ok bool) {
	for _, key := range []string{"location", "geo", "position"} {
		if sub := store.Sub(data, key); sub != nil {
			if lat, lng, ok = coordPair(sub); ok {
				return lat, lng, true
			}
		}
	}
	return coordPair(data)
}

func coordPair(data map[string]interface{}) (float64, float64, bool) {
	lat, latOK := store.Num(data, "latitude", "_latitude", "lat")
	lng, lngOK := store.Num(data, "longitude", "_longitude", "lng", "lon")
	if !latOK || !lngOK {
		return 0, 0, false
	}
	if lat == 0 && lng == 0 {
		return 0, 0, false
	}
	return lat, lng, true
}
