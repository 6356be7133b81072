package iperf

import (
	"fmt"
	"strconv"
)

// Unit thresholds are decimal (base 1000), matching iperf3's own reporting.
const (
	kilo = 1e3
	mega = 1e6
	giga = 1e9
	tera = 1e12
)

// FormatRate renders a bits-per-second value as a human-readable unit string.
// When raw is true the numeric value is returned verbatim. Sub-1000 values
// keep the historical pluralization: only an exact zero reads "Bytes", every
// other sub-1000 value reads "Byte".
func FormatRate(bps float64, raw bool) string {
	if raw {
		return strconv.FormatFloat(bps, 'f', -1, 64)
	}
	switch {
	case bps < kilo:
		unit := "Byte"
		if bps == 0 {
			unit = "Bytes"
		}
		return strconv.FormatFloat(bps, 'f', -1, 64) + " " + unit
	case bps < mega:
		return fmt.Sprintf("%.2f Kbps", bps/kilo)
	case bps < giga:
		return fmt.Sprintf("%.2f Mbps", bps/mega)
	case bps < tera:
		return fmt.Sprintf("%.2f Gbps", bps/giga)
	default:
		return fmt.Sprintf("%.2f Tbps", bps/tera)
	}
}
