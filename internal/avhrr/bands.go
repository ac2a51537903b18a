package avhrr

// Band maps an FDR dataset to its PPS product identity. Bands absent from
// an input file are skipped; image numbering follows the order of presence.
type Band struct {
	Dataset string
	IDTag   string
	Refl    bool
}

// Bands lists the AVHRR channels in output order.
var Bands = []Band{
	{Dataset: "reflectance_channel_1", IDTag: "ch_r06", Refl: true},
	{Dataset: "reflectance_channel_2", IDTag: "ch_r09", Refl: true},
	{Dataset: "reflectance_channel_3", IDTag: "ch_r16", Refl: true},
	{Dataset: "brightness_temperature_channel_3", IDTag: "ch_tb37"},
	{Dataset: "brightness_temperature_channel_4", IDTag: "ch_tb11"},
	{Dataset: "brightness_temperature_channel_5", IDTag: "ch_tb12"},
}

// referenceDataset anchors times, coordinates, and shared attributes.
const referenceDataset = "brightness_temperature_channel_4"

func (b Band) units() string {
	if b.Refl {
		return "%"
	}
	return "K"
}
