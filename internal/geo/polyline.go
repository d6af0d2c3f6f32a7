package geo

import "tripdash/internal/model"

// Google encoded polyline, 1e-5 precision.
//
// DecodePolyline is deliberately tolerant: planned routes come from an
// external provider and occasionally arrive truncated. A malformed tail
// yields the points decoded so far; garbage input yields an empty slice.
// Progress math downstream treats an empty planned path as "no route".
func DecodePolyline(encoded string) []model.Coordinate {
	points := []model.Coordinate{}
	index, lat, lng := 0, 0, 0
	n := len(encoded)
	for index < n {
		dLat, next, ok := decodeVarint(encoded, index)
		if !ok {
			return points
		}
		index = next
		dLng, next, ok := decodeVarint(encoded, index)
		if !ok {
			return points
		}
		index = next
		lat += dLat
		lng += dLng
		points = append(points, model.Coordinate{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}

// decodeVarint reads one zigzag varint starting at index. ok is false on a
// truncated chunk sequence or an out-of-range byte.
func decodeVarint(encoded string, index int) (value, next int, ok bool) {
	result, shift := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		if b < 0 || b > 63 {
			return 0, index, false
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

// EncodePolyline is the inverse of DecodePolyline. The service itself only
// decodes; encoding exists for fixtures and round-trip tests.
func EncodePolyline(points []model.Coordinate) string {
	out := make([]byte, 0, len(points)*4)
	prevLat, prevLng := 0, 0
	for _, p := range points {
		lat := int(round5(p.Lat))
		lng := int(round5(p.Lng))
		out = encodeDiff(out, lat-prevLat)
		out = encodeDiff(out, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(out)
}

func encodeDiff(out []byte, diff int) []byte {
	v := diff << 1
	if diff < 0 {
		v = ^v
	}
	for v >= 0x20 {
		out = append(out, byte((0x20|(v&0x1f))+63))
		v >>= 5
	}
	return append(out, byte(v+63))
}

func round5(deg float64) float64 {
	scaled := deg * 1e5
	if scaled < 0 {
		return float64(int(scaled - 0.5))
	}
	return float64(int(scaled + 0.5))
}
