// Package geotiff realizes the Raster contract against GeoTIFF files using
// airbusgeo/godal (a CGo binding onto GDAL): Float32 bands, a 6-tuple
// affine transform, and per-band NAME metadata plus
// CUSTOM_X_ORIGIN/CUSTOM_Y_ORIGIN dataset metadata.
package geotiff

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/pkg/errors"

	"github.com/gladys-robotics/navcore/logging"
	"github.com/gladys-robotics/navcore/raster"
)

const (
	metaBandName     = "NAME"
	metaCustomXOrign = "CUSTOM_X_ORIGIN"
	metaCustomYOrign = "CUSTOM_Y_ORIGIN"
)

func init() {
	godal.RegisterAll()
}

// Load opens path as a multi-band GeoTIFF and builds a raster.Raster from
// its bands, affine transform, and per-band NAME metadata.
func Load(path string, log logging.Logger) (*raster.Raster, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "geotiff: opening %q", path)
	}
	defer ds.Close()

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, errors.Wrapf(err, "geotiff: reading geotransform of %q", path)
	}
	transform := raster.Transform{
		OriginX: gt[0],
		ScaleX:  gt[1],
		OriginY: gt[3],
		ScaleY:  gt[5],
	}

	bands := ds.Bands()
	structure := ds.Structure()
	width, height := structure.SizeX, structure.SizeY

	names := make([]string, len(bands))
	data := make([][]float32, len(bands))
	for i, band := range bands {
		name := band.Metadata(metaBandName)
		if name == "" {
			name = defaultBandName(i)
		}
		buf := make([]float32, width*height)
		if err := band.Read(0, 0, buf, width, height); err != nil {
			return nil, errors.Wrapf(err, "geotiff: reading band %d (%s) of %q", i, name, path)
		}
		names[i] = name
		data[i] = buf
	}

	customX := floatMetadataOrZero(ds.Metadata(metaCustomXOrign))
	customY := floatMetadataOrZero(ds.Metadata(metaCustomYOrign))

	r, err := raster.New(width, height, names, data, transform, customX, customY)
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Infow("loaded raster", "path", path, "width", width, "height", height, "bands", names)
	}
	return r, nil
}

// SaveWeightBand writes a single-band GeoTIFF carrying r's WEIGHT band,
// matching the "Saved cost maps carry a single band named WEIGHT" contract.
func SaveWeightBand(path string, r *raster.Raster, transform raster.Transform) error {
	weight, ok := r.Band("WEIGHT")
	if !ok {
		return errors.New("geotiff: raster has no WEIGHT band to save")
	}
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, r.Width(), r.Height())
	if err != nil {
		return errors.Wrapf(err, "geotiff: creating %q", path)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform([6]float64{
		transform.OriginX, transform.ScaleX, 0,
		transform.OriginY, 0, transform.ScaleY,
	}); err != nil {
		return errors.Wrap(err, "geotiff: setting geotransform")
	}

	band := ds.Bands()[0]
	if err := band.SetMetadata(metaBandName, "WEIGHT"); err != nil {
		return errors.Wrap(err, "geotiff: tagging WEIGHT band name")
	}
	if err := band.Write(0, 0, weight, r.Width(), r.Height()); err != nil {
		return errors.Wrapf(err, "geotiff: writing WEIGHT band to %q", path)
	}
	return nil
}

func defaultBandName(i int) string {
	return "BAND_" + string(rune('0'+i))
}

func floatMetadataOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscan(s, &v); err != nil {
		return 0
	}
	return v
}
