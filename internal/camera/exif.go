package camera

import (
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractMetadata reads EXIF camera information from an image stream.
// Missing or unreadable metadata is not an error for the pipeline; callers
// treat a failed extraction as "no metadata" and fall back to defaults.
func ExtractMetadata(r io.Reader) (Metadata, error) {
	var meta Metadata

	x, err := exif.Decode(r)
	if err != nil {
		return meta, fmt.Errorf("decode exif: %w", err)
	}

	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.FocalLengthMM = float64(num) / float64(den)
		}
	}
	if tag, err := x.Get(exif.FocalLengthIn35mmFilm); err == nil {
		if v, err := tag.Int(0); err == nil {
			meta.FocalLength35MM = float64(v)
		}
	}
	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		if v, err := tag.Int(0); err == nil {
			meta.ImageWidth = v
		}
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		if v, err := tag.Int(0); err == nil {
			meta.ImageHeight = v
		}
	}

	return meta, nil
}
