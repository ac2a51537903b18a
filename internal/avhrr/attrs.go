package avhrr

// Attribute surgery applied when converting EUMETSAT AVHRR GAC FDR files.
// The input's global attributes are either dropped, carried into the
// level-1c header, or renamed on the way there.

var removeAttributes = []string{
	"_satpy_id",
	"creator_email",
	"comment",
	"creator_url",
	"date_created",
	"disposition_mode",
	"institution",
	"keywords",
	"keywords_vocabulary",
	"naming_authority",
	"processing_mode",
}

var moveToHeader = []string{
	"gac_filename",
	"geospatial_lat_max",
	"geospatial_lat_min",
	"geospatial_lat_units",
	"geospatial_lon_max",
	"geospatial_lon_min",
	"geospatial_lon_units",
	"ground_station",
	"history",
	"orbital_parameters_tle",
	"orbit_number_end",
	"orbit_number_start",
	"references",
	"source",
	"standard_name_vocabulary",
	"summary",
	"time_coverage_end",
	"time_coverage_start",
	"title",
	"version_calib_coeffs",
	"version_pygac",
	"version_pygac_fdr",
}

// renameAndMoveToHeader keeps the original's misspelled eumetsat GAC id key.
var renameAndMoveToHeader = map[string]string{
	"id":              "euemtsat_gac_id",
	"licence":         "eumetsat_licence",
	"product_version": "eumetsat_product_version",
	"version_satpy":   "eumetsat_pygac_fdr_satpy_version",
}

var copyToHeader = []string{
	"start_time",
	"end_time",
}

// bandAttributeNoise lists per-dataset attributes that never survive into
// the level-1c product.
var bandAttributeNoise = []string{
	"valid_min",
	"valid_max",
	"coordinates",
	"resolution",
	"calibration",
	"polarization",
	"level",
	"modifiers",
	"scale_factor",
	"add_offset",
	"_FillValue",
}

// cleanBandAttrs filters an input dataset's attributes down to the ones a
// band may carry into the output.
func cleanBandAttrs(attrs map[string]string) map[string]string {
	drop := make(map[string]bool)
	for _, name := range bandAttributeNoise {
		drop[name] = true
	}
	for _, name := range removeAttributes {
		drop[name] = true
	}
	for _, name := range moveToHeader {
		drop[name] = true
	}
	for from := range renameAndMoveToHeader {
		drop[from] = true
	}
	out := make(map[string]string)
	for name, value := range attrs {
		if !drop[name] {
			out[name] = value
		}
	}
	return out
}

// headerAttrs applies the surgery tables to the input's global attributes
// and returns the attributes destined for the level-1c header. The source
// attr is overwritten later by the writer, so it is dropped here.
func headerAttrs(globals map[string]string) map[string]string {
	out := make(map[string]string)
	keep := func(name string) {
		if value, ok := globals[name]; ok && name != "source" {
			out[name] = value
		}
	}
	for _, name := range moveToHeader {
		keep(name)
	}
	for _, name := range copyToHeader {
		keep(name)
	}
	for from, to := range renameAndMoveToHeader {
		if value, ok := globals[from]; ok {
			out[to] = value
		}
	}
	return out
}
