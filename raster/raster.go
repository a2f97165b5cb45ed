// Package raster implements a dense, row-major, multi-band 32-bit-float
// grid with an affine pixel↔UTM transform, a named band registry, and a
// "custom" local-frame origin. CostMap, NavGraph and VisibilityTester all
// consume this contract rather than any specific file format — the format
// itself lives in raster/geotiff.
package raster

import (
	"github.com/pkg/errors"

	"github.com/gladys-robotics/navcore/spatialmath"
)

// ErrOutOfBounds is returned when pixel-index arithmetic produces an index
// outside the raster.
var ErrOutOfBounds = errors.New("raster: index out of bounds")

// Transform is the affine pixel→UTM transform: UTM = origin + (u*scaleX,
// v*scaleY). scaleY is conventionally negative for north-up rasters.
type Transform struct {
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
}

// Raster is a dense multi-band grid. Bands are stored row-major, one
// []float32 of length Width*Height per band name.
type Raster struct {
	width, height int
	bandIndex     map[string]int
	bands         [][]float32
	transform     Transform
	customOriginX float64
	customOriginY float64
}

// New builds a Raster. bandOrder fixes each band's position (and therefore
// its slice in bands); bands[i] must have length width*height.
func New(width, height int, bandOrder []string, bands [][]float32, transform Transform, customOriginX, customOriginY float64) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	if len(bandOrder) != len(bands) {
		return nil, errors.Errorf("raster: %d band names but %d band slices", len(bandOrder), len(bands))
	}
	index := make(map[string]int, len(bandOrder))
	want := width * height
	for i, name := range bandOrder {
		if len(bands[i]) != want {
			return nil, errors.Errorf("raster: band %q has %d cells, want %d", name, len(bands[i]), want)
		}
		index[name] = i
	}
	return &Raster{
		width:         width,
		height:        height,
		bandIndex:     index,
		bands:         bands,
		transform:     transform,
		customOriginX: customOriginX,
		customOriginY: customOriginY,
	}, nil
}

// Width returns the raster width in cells.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in cells.
func (r *Raster) Height() int { return r.height }

// Transform returns the raster's affine pixel→UTM transform.
func (r *Raster) Transform() Transform { return r.transform }

// HasBand reports whether a band with the given name exists.
func (r *Raster) HasBand(name string) bool {
	_, ok := r.bandIndex[name]
	return ok
}

// Band returns the flat row-major data for the named band.
func (r *Raster) Band(name string) ([]float32, bool) {
	i, ok := r.bandIndex[name]
	if !ok {
		return nil, false
	}
	return r.bands[i], true
}

// BandNames returns all band names present, in no particular order.
func (r *Raster) BandNames() []string {
	names := make([]string, 0, len(r.bandIndex))
	for name := range r.bandIndex {
		names = append(names, name)
	}
	return names
}

// At returns the value of the named band at pixel (u,v).
func (r *Raster) At(name string, u, v int) (float32, error) {
	band, ok := r.Band(name)
	if !ok {
		return 0, errors.Errorf("raster: unknown band %q", name)
	}
	idx, err := r.Index(u, v)
	if err != nil {
		return 0, err
	}
	return band[idx], nil
}

// Index converts a pixel coordinate to a flat row-major offset, validating
// bounds.
func (r *Raster) Index(u, v int) (int, error) {
	if u < 0 || u >= r.width || v < 0 || v >= r.height {
		return 0, errors.Wrapf(ErrOutOfBounds, "pixel (%d,%d) not within %dx%d", u, v, r.width, r.height)
	}
	return v*r.width + u, nil
}

// InBounds reports whether pixel (u,v) is within the raster.
func (r *Raster) InBounds(u, v int) bool {
	return u >= 0 && u < r.width && v >= 0 && v < r.height
}

// IndexUTM converts a UTM-frame point to a flat row-major offset.
func (r *Raster) IndexUTM(p spatialmath.Point2) (int, error) {
	u, v := r.pixelOfUTM(p)
	return r.Index(u, v)
}

// IndexCustom converts a custom-frame point to a flat row-major offset.
func (r *Raster) IndexCustom(p spatialmath.Point2) (int, error) {
	return r.IndexUTM(r.CustomToUTM(p))
}

// PixelOfUTM converts a UTM-frame point to its containing pixel indices,
// without bounds validation (use InBounds or Index to check).
func (r *Raster) PixelOfUTM(p spatialmath.Point2) (int, int) {
	return r.pixelOfUTM(p)
}

func (r *Raster) pixelOfUTM(p spatialmath.Point2) (int, int) {
	u := int((p.X - r.transform.OriginX) / r.transform.ScaleX)
	v := int((p.Y - r.transform.OriginY) / r.transform.ScaleY)
	return u, v
}

// CustomToUTM converts a point in the custom local frame to UTM.
func (r *Raster) CustomToUTM(p spatialmath.Point2) spatialmath.Point2 {
	return spatialmath.NewPoint2(p.X+r.customOriginX, p.Y+r.customOriginY)
}

// UTMToCustom converts a UTM point to the custom local frame.
func (r *Raster) UTMToCustom(p spatialmath.Point2) spatialmath.Point2 {
	return spatialmath.NewPoint2(p.X-r.customOriginX, p.Y-r.customOriginY)
}

// PixelToUTM converts a pixel-center coordinate to UTM.
func (r *Raster) PixelToUTM(u, v int) spatialmath.Point2 {
	x := r.transform.OriginX + (float64(u)+0.5)*r.transform.ScaleX
	y := r.transform.OriginY + (float64(v)+0.5)*r.transform.ScaleY
	return spatialmath.NewPoint2(x, y)
}
