package calib

import (
	"fmt"
	"time"
)

// Mode selects how solar channel counts are converted to radiance.
type Mode string

const (
	// ModeMeirink applies the time-dependent SEVIRI solar channel
	// recalibration anchored at the year 2000.
	ModeMeirink Mode = "meirink"
	// ModeNominal applies the constant slopes published for each platform.
	ModeNominal Mode = "nominal"
)

// spaceCount is the deep-space count level of the SEVIRI detectors; the
// radiance offset is defined so that a space view maps to zero radiance.
const spaceCount = 51.0

// meirinkEpoch anchors the linear gain drift model.
var meirinkEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type meirinkCoef struct {
	gain  float64 // mW m-2 sr-1 (cm-1)-1 per count, scaled by 1000
	drift float64 // gain change per 1000 days, same scaling
}

// Time-dependent solar channel coefficients per platform.
var meirinkCoefs = map[string]map[string]meirinkCoef{
	"MSG1": {
		"VIS006": {24.346, 0.3739},
		"VIS008": {30.989, 0.3111},
		"IR_016": {22.869, 0.0065},
	},
	"MSG2": {
		"VIS006": {21.026, 0.2556},
		"VIS008": {26.875, 0.1835},
		"IR_016": {21.394, 0.0498},
	},
	"MSG3": {
		"VIS006": {19.829, 0.5856},
		"VIS008": {25.284, 0.6787},
		"IR_016": {23.066, -0.0286},
	},
	"MSG4": {
		"VIS006": {21.040, 0.2877},
		"VIS008": {26.522, 0.4773},
		"IR_016": {22.342, 0.0863},
	},
}

// MeirinkGainOffset returns the calibration slope and offset for a solar
// channel at the given scan time. Radiance = gain*count + offset.
func MeirinkGainOffset(platform, channel string, scanTime time.Time) (gain, offset float64, err error) {
	platformCoefs, ok := meirinkCoefs[platform]
	if !ok {
		return 0, 0, fmt.Errorf("no solar calibration for platform %q", platform)
	}
	coef, ok := platformCoefs[channel]
	if !ok {
		return 0, 0, fmt.Errorf("no solar calibration for channel %q", channel)
	}

	days := scanTime.Sub(meirinkEpoch).Hours() / 24
	gain = (coef.gain + coef.drift*days/1000.0) / 1000.0
	offset = -spaceCount * gain
	return gain, offset, nil
}

// NominalGainOffset returns the constant per-platform slope and offset for a
// solar channel.
func NominalGainOffset(platform, channel string) (gain, offset float64, err error) {
	platformGains, ok := nominalSolarGains[platform]
	if !ok {
		return 0, 0, fmt.Errorf("no nominal calibration for platform %q", platform)
	}
	g, ok := platformGains[channel]
	if !ok {
		return 0, 0, fmt.Errorf("no nominal calibration for channel %q", channel)
	}
	return g, -spaceCount * g, nil
}

// Constant solar channel slopes (mW m-2 sr-1 (cm-1)-1 per count).
var nominalSolarGains = map[string]map[string]float64{
	"MSG1": {"VIS006": 0.023128, "VIS008": 0.029727, "IR_016": 0.022637},
	"MSG2": {"VIS006": 0.021026, "VIS008": 0.026875, "IR_016": 0.021394},
	"MSG3": {"VIS006": 0.021620, "VIS008": 0.027378, "IR_016": 0.023066},
	"MSG4": {"VIS006": 0.021040, "VIS008": 0.026522, "IR_016": 0.022342},
}

// SolarGainOffset dispatches on the configured calibration mode.
func SolarGainOffset(mode Mode, platform, channel string, scanTime time.Time) (gain, offset float64, err error) {
	switch mode {
	case ModeNominal:
		return NominalGainOffset(platform, channel)
	case ModeMeirink, "":
		return MeirinkGainOffset(platform, channel, scanTime)
	default:
		return 0, 0, fmt.Errorf("unknown calibration mode %q", mode)
	}
}
