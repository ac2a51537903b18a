package level1c

import (
	"fmt"
	"strings"
	"time"
)

// formatStamp renders a time as yyyymmddThhmmssf where the trailing digit is
// tenths of a second, truncated.
func formatStamp(t time.Time) string {
	return t.Format("20060102T150405") + fmt.Sprintf("%d", t.Nanosecond()/100000000)
}

// OutputFilename composes the NWC SAF level-1c product filename:
// S_NWC_<sensor>_<platform>_<orbit>_<start>Z_<end>Z.nc. The platform name is
// lowercased with dashes removed, so "Metop-B" becomes "metopb".
func OutputFilename(sensor, platform, orbit string, start, end time.Time) string {
	p := strings.ReplaceAll(strings.ToLower(platform), "-", "")
	return fmt.Sprintf("S_NWC_%s_%s_%s_%sZ_%sZ.nc",
		sensor, p, orbit, formatStamp(start.UTC()), formatStamp(end.UTC()))
}
