package calib

import (
	"fmt"
	"math"
)

// Band-integrated solar irradiances for the SEVIRI solar channels in
// mW m-2 (cm-1)-1.
var solarIrradiance = map[string]float64{
	"VIS006": 65.2296,
	"VIS008": 73.0127,
	"IR_016": 62.3715,
}

// RadianceToReflectance converts a solar channel radiance to a bidirectional
// reflectance factor in percent, without sun-zenith or sun-earth distance
// correction.
func RadianceToReflectance(channel string, radiance float64) (float64, error) {
	irradiance, ok := solarIrradiance[channel]
	if !ok {
		return 0, fmt.Errorf("no solar irradiance for channel %q", channel)
	}
	return 100.0 * math.Pi * radiance / irradiance, nil
}
