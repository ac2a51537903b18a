package calib

import (
	"fmt"
	"math"
)

// Planck radiation constants for wavenumber form, radiance in
// mW m-2 sr-1 (cm-1)-1.
const (
	planckC1 = 1.19104e-5 // mW m-2 sr-1 (cm-1)-4
	planckC2 = 1.43877    // K (cm-1)-1
)

type planckCoef struct {
	nu    float64 // effective central wavenumber, cm-1
	alpha float64
	beta  float64 // K
}

// Effective radiance assumption coefficients for the SEVIRI thermal channels.
var planckCoefs = map[string]planckCoef{
	"IR_039": {2555.280, 0.9916, 2.9438},
	"WV_062": {1596.080, 0.9959, 2.0780},
	"WV_073": {1361.748, 0.9990, 0.4929},
	"IR_087": {1147.433, 0.9996, 0.1731},
	"IR_097": {1034.851, 0.9999, 0.0597},
	"IR_108": {931.122, 0.9983, 0.6256},
	"IR_120": {839.113, 0.9988, 0.4002},
	"IR_134": {748.585, 0.9981, 0.5635},
}

// RadianceToBrightness inverts the Planck function for a thermal channel and
// returns the brightness temperature in kelvin. Non-positive radiances have
// no physical temperature and yield an error.
func RadianceToBrightness(channel string, radiance float64) (float64, error) {
	coef, ok := planckCoefs[channel]
	if !ok {
		return 0, fmt.Errorf("no brightness temperature coefficients for channel %q", channel)
	}
	if radiance <= 0 {
		return 0, fmt.Errorf("non-positive radiance %g for channel %s", radiance, channel)
	}
	nu3 := coef.nu * coef.nu * coef.nu
	tStar := planckC2 * coef.nu / math.Log(1.0+planckC1*nu3/radiance)
	return (tStar - coef.beta) / coef.alpha, nil
}

// BrightnessToRadiance is the forward Planck function for a thermal channel.
func BrightnessToRadiance(channel string, temperature float64) (float64, error) {
	coef, ok := planckCoefs[channel]
	if !ok {
		return 0, fmt.Errorf("no brightness temperature coefficients for channel %q", channel)
	}
	nu3 := coef.nu * coef.nu * coef.nu
	tStar := coef.alpha*temperature + coef.beta
	return planckC1 * nu3 / (math.Exp(planckC2*coef.nu/tStar) - 1.0), nil
}

// ThermalGainOffset returns the constant slope and offset for a thermal
// channel. Radiance = gain*count + offset. The slopes vary only marginally
// between the MSG platforms, so a single table is used for all of them.
func ThermalGainOffset(channel string) (gain, offset float64, err error) {
	g, ok := nominalThermalGains[channel]
	if !ok {
		return 0, 0, fmt.Errorf("no thermal calibration for channel %q", channel)
	}
	return g, -spaceCount * g, nil
}

// Constant thermal channel slopes (mW m-2 sr-1 (cm-1)-1 per count).
var nominalThermalGains = map[string]float64{
	"IR_039": 0.003659,
	"WV_062": 0.008318,
	"WV_073": 0.038621,
	"IR_087": 0.126744,
	"IR_097": 0.103961,
	"IR_108": 0.205034,
	"IR_120": 0.222311,
	"IR_134": 0.157609,
}
