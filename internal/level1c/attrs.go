package level1c

import (
	"time"
)

// AngleSpec defines one of the three PPS angle datasets.
type AngleSpec struct {
	IDTag        string
	Name         string
	LongName     string
	StandardName string
	ValidMin     int16 // packed units
	ValidMax     int16
}

// The angle datasets every level-1c product carries, in output order.
var AngleSpecs = []AngleSpec{
	{
		IDTag:        "sunzenith",
		Name:         "image11",
		LongName:     "sun zenith angle",
		StandardName: "solar_zenith_angle",
		ValidMin:     0,
		ValidMax:     18000,
	},
	{
		IDTag:        "satzenith",
		Name:         "image12",
		LongName:     "satellite zenith angle",
		StandardName: "platform_zenith_angle",
		ValidMin:     0,
		ValidMax:     9000,
	},
	{
		IDTag:        "azimuthdiff",
		Name:         "image13",
		LongName:     "absolute azimuth difference angle",
		StandardName: "angle_of_rotation_from_solar_azimuth_to_platform_azimuth",
		ValidMin:     0,
		ValidMax:     18000,
	},
}

// AngleSpecFor returns the spec for an angle id_tag.
func AngleSpecFor(idTag string) (AngleSpec, bool) {
	for _, spec := range AngleSpecs {
		if spec.IDTag == idTag {
			return spec, true
		}
	}
	return AngleSpec{}, false
}

// AngleAttrs builds the dataset attributes for an angle field.
func (spec AngleSpec) AngleAttrs() map[string]string {
	return map[string]string{
		"id_tag":        spec.IDTag,
		"long_name":     spec.LongName,
		"standard_name": spec.StandardName,
		"units":         "degree",
		"coordinates":   "lon lat",
	}
}

// HeaderAttrs builds the global attributes of a level-1c file.
func HeaderAttrs(sensor, platform, instrument, orbit string, start, end, created time.Time) map[string]string {
	return map[string]string{
		"platform":     platform,
		"instrument":   instrument,
		"source":       "pps1c",
		"orbit_number": orbit,
		"date_created": created.UTC().Format("2006-01-02T15:04:05Z"),
		"start_time":   start.UTC().Format("2006-01-02 15:04:05"),
		"end_time":     end.UTC().Format("2006-01-02 15:04:05"),
		"sensor":       sensor,
	}
}
