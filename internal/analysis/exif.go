package analysis

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/yp-ac/album-maker/internal/album"
)

// extractMetadata pulls the optional GPS position and capture timestamp out
// of the image's EXIF block. Photos without EXIF, without a GPS IFD, or
// without a date tag simply keep nil fields; degenerate metadata is never an
// error, the clustering policy handles it.
func extractMetadata(data []byte) (*album.Position, *time.Time) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}

	var position *album.Position
	if lat, lon, err := x.LatLong(); err == nil {
		position = &album.Position{Lat: lat, Lon: lon}
	}

	var taken *time.Time
	if t, err := x.DateTime(); err == nil {
		utc := t.UTC()
		taken = &utc
	}

	return position, taken
}
