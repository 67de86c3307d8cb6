package app

// SMS part splitting per GSM 03.38. Messages expressible in the GSM-7
// default alphabet carry 160 septets in a single SMS and 153 per part when
// concatenated; anything else (Vietnamese text in particular) goes out as
// UCS-2 with 70 and 67 UTF-16 code units respectively.

const (
	gsm7SingleLimit = 160
	gsm7MultiLimit  = 153
	ucs2SingleLimit = 70
	ucs2MultiLimit  = 67
)

// gsm7Basic is the GSM 03.38 default alphabet (one septet each).
const gsm7Basic = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

// gsm7Extension chars are escaped on the wire and cost two septets.
const gsm7Extension = "^{}\\[~]|€"

var (
	gsm7BasicSet     = makeRuneSet(gsm7Basic)
	gsm7ExtensionSet = makeRuneSet(gsm7Extension)
)

func makeRuneSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// gsm7Cost returns the septet cost of r, or 0 when r is not expressible in
// the GSM-7 alphabet.
func gsm7Cost(r rune) int {
	if _, ok := gsm7BasicSet[r]; ok {
		return 1
	}
	if _, ok := gsm7ExtensionSet[r]; ok {
		return 2
	}
	return 0
}

// ucs2Cost is the UTF-16 code unit count of r. Runes beyond the BMP encode
// as a surrogate pair and must never straddle a part boundary.
func ucs2Cost(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// SplitMessage breaks body into SMS parts, choosing the GSM-7 or UCS-2
// encoding limits based on content. An empty body yields a single empty part.
func SplitMessage(body string) []string {
	useUCS2 := false
	total := 0
	for _, r := range body {
		c := gsm7Cost(r)
		if c == 0 {
			useUCS2 = true
			break
		}
		total += c
	}

	cost := gsm7Cost
	single, multi := gsm7SingleLimit, gsm7MultiLimit
	if useUCS2 {
		cost = ucs2Cost
		single, multi = ucs2SingleLimit, ucs2MultiLimit
		total = 0
		for _, r := range body {
			total += ucs2Cost(r)
		}
	}

	if total <= single {
		return []string{body}
	}
	return splitByCost(body, multi, cost)
}

func splitByCost(body string, limit int, cost func(rune) int) []string {
	var parts []string
	var current []rune
	used := 0
	for _, r := range body {
		c := cost(r)
		if used+c > limit {
			parts = append(parts, string(current))
			current = current[:0]
			used = 0
		}
		current = append(current, r)
		used += c
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
