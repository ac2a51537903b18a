package seviri

// Band maps a SEVIRI HRIT channel to its PPS product identity.
type Band struct {
	Channel string // HRIT channel name
	IDTag   string // PPS product tag
	Name    string // output dataset name
	Thermal bool
}

// Bands lists the eleven SEVIRI channels in output order. The HRV channel
// is not part of the level-1c product.
var Bands = []Band{
	{Channel: "VIS006", IDTag: "ch_r06", Name: "image0"},
	{Channel: "VIS008", IDTag: "ch_r09", Name: "image1"},
	{Channel: "IR_016", IDTag: "ch_r16", Name: "image2"},
	{Channel: "IR_039", IDTag: "ch_tb37", Name: "image3", Thermal: true},
	{Channel: "IR_087", IDTag: "ch_tb85", Name: "image4", Thermal: true},
	{Channel: "IR_108", IDTag: "ch_tb11", Name: "image5", Thermal: true},
	{Channel: "IR_120", IDTag: "ch_tb12", Name: "image6", Thermal: true},
	{Channel: "IR_134", IDTag: "ch_tb133", Name: "image7", Thermal: true},
	{Channel: "IR_097", IDTag: "ch_tb97", Name: "image8", Thermal: true},
	{Channel: "WV_062", IDTag: "ch_tb67", Name: "image9", Thermal: true},
	{Channel: "WV_073", IDTag: "ch_tb73", Name: "image10", Thermal: true},
}

// BandForChannel returns the band definition for an HRIT channel name.
func BandForChannel(channel string) (Band, bool) {
	for _, b := range Bands {
		if b.Channel == channel {
			return b, true
		}
	}
	return Band{}, false
}

func (b Band) units() string {
	if b.Thermal {
		return "K"
	}
	return "%"
}
