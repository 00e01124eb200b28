// Package crs derives a coordinate reference system and geotransform
// adjustment from a container's numeric country code. It is a pure lookup
// table plus a small amount of axis/shift arithmetic — no projection maths,
// no registry I/O — matching the "treated as external collaborators" scope
// given to CRS registry lookups.
//
// The table shape follows an EPSG-number-keyed-off-a-discriminant
// factory, generalized from a small hand enum to the full
// country-code table.
package crs

// Entry describes the spatial reference and any axis adjustment implied
// by a country code.
type Entry struct {
	EPSG int
	// Swap indicates the source bounding box stores (north, east) rather
	// than (east, north). Apply does not swap axes; the flag is recorded
	// in the table only.
	Swap bool
	// ScaleDivisor, if nonzero, divides outer-bbox coordinates (country 17:
	// bbox units are 1/9,000,000 of the nominal unit).
	ScaleDivisor float64
	// ShiftYNorth, if nonzero, is added to the Y (north) coordinate before
	// producing a geotransform (country 155's 10,000,000 shift).
	ShiftYNorth float64
}

var table = map[uint16]Entry{
	1:   {EPSG: 27700},
	2:   {EPSG: 29901},
	5:   {EPSG: 2393, Swap: true},
	8:   {EPSG: 31370},
	9:   {EPSG: 21781, Swap: true},
	12:  {EPSG: 28992},
	13:  {EPSG: 3907},
	14:  {EPSG: 3006, Swap: true},
	15:  {EPSG: 25833},
	16:  {EPSG: 32632},
	17:  {EPSG: 4267, Swap: true, ScaleDivisor: 9_000_000},
	18:  {EPSG: 2193, Swap: true},
	19:  {EPSG: 2154},
	20:  {EPSG: 2100},
	21:  {EPSG: 3042, Swap: true},
	132: {EPSG: 25832},
	133: {EPSG: 25833},
	155: {EPSG: 28355, ShiftYNorth: 10_000_000},
}

// defaultEntry is returned for any country code not present in the
// exhaustive table: plain WGS84, no adjustments.
var defaultEntry = Entry{EPSG: 4326}

// ForCountryCode looks up the CRS entry for a numeric country code.
func ForCountryCode(code uint16) Entry {
	if e, ok := table[code]; ok {
		return e
	}
	return defaultEntry
}

// GeoTransform is the six-tuple (left, pixel_w, 0, top, 0, -pixel_h) the
// host-facing interface reports for a raster.
type GeoTransform struct {
	Left, PixelW, Top, PixelH float64
}

// Apply computes the adjusted geotransform for this entry given the raw
// outer-bbox left/top position and an already-computed pixel size in CRS
// units. Country 17 scales the left/top position by 1/9,000,000 before
// use (the pixel size is derived from the unscaled bbox extent and is left
// untouched); country 155 shifts the north coordinate by +10,000,000.
func (e Entry) Apply(left, top, pixelW, pixelH float64) GeoTransform {
	if e.ScaleDivisor != 0 {
		left /= e.ScaleDivisor
		top /= e.ScaleDivisor
	}
	if e.ShiftYNorth != 0 {
		top += e.ShiftYNorth
	}
	return GeoTransform{Left: left, PixelW: pixelW, Top: top, PixelH: pixelH}
}
