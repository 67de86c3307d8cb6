package app

import (
	"strings"

	"github.com/boostgo/customercare/internal/care_service/adapters/smsgateway"
)

// Vietnamese mobile operators.
const (
	CarrierViettel      = "Viettel"
	CarrierVinaphone    = "Vinaphone"
	CarrierMobifone     = "Mobifone"
	CarrierVietnamobile = "Vietnamobile"
	CarrierGmobile      = "Gmobile"
	CarrierUnknown      = "Unknown"
)

type carrierPrefixes struct {
	carrier  string
	prefixes []string
}

// Checked in order; the first prefix match wins.
var carrierTable = []carrierPrefixes{
	{CarrierViettel, []string{"086", "096", "097", "098", "032", "033", "034", "035", "036", "037", "038", "039"}},
	{CarrierVinaphone, []string{"088", "091", "094", "081", "082", "083", "084", "085", "087"}},
	{CarrierMobifone, []string{"089", "090", "093", "070", "076", "077", "078", "079"}},
	{CarrierVietnamobile, []string{"092", "056", "058"}},
	{CarrierGmobile, []string{"059", "099"}},
}

// DetectCarrier maps a destination number to its operator by dialing prefix.
// International spellings (+84..., 84...) are normalized to the domestic form
// first.
func DetectCarrier(number string) string {
	n := normalizeDomestic(number)
	for _, entry := range carrierTable {
		for _, prefix := range entry.prefixes {
			if strings.HasPrefix(n, prefix) {
				return entry.carrier
			}
		}
	}
	return CarrierUnknown
}

func normalizeDomestic(number string) string {
	n := strings.TrimSpace(number)
	n = strings.TrimPrefix(n, "+")
	if strings.HasPrefix(n, "84") {
		n = "0" + n[2:]
	}
	return n
}

// lineCarrier interprets the operator name a SIM reports, which ranges from
// full brand names to short tags like "VINA690".
func lineCarrier(reported string) string {
	up := strings.ToUpper(reported)
	switch {
	case strings.Contains(up, "VIETNAMOBILE"):
		return CarrierVietnamobile
	case strings.Contains(up, "VIETTEL"):
		return CarrierViettel
	case strings.Contains(up, "VINA"):
		return CarrierVinaphone
	case strings.Contains(up, "MOBI"):
		return CarrierMobifone
	case strings.Contains(up, "GMOBILE"), strings.Contains(up, "BEELINE"):
		return CarrierGmobile
	default:
		return CarrierUnknown
	}
}

// SelectLine picks the SIM line to transmit on: a line on the destination's
// own network when one is present, otherwise the first available line.
// Returns nil when no lines are available.
func SelectLine(lines []smsgateway.Line, destination string) *smsgateway.Line {
	if len(lines) == 0 {
		return nil
	}
	want := DetectCarrier(destination)
	if want != CarrierUnknown {
		for i := range lines {
			if lineCarrier(lines[i].Carrier) == want {
				return &lines[i]
			}
		}
	}
	return &lines[0]
}
