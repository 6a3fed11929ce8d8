package parsing

import "strings"

// streetTypes lists the words that mark a nearby number as a street number.
var streetTypes = map[string]struct{}{
	"RD": {}, "RD.": {}, "ROAD": {},
	"DR": {}, "DR.": {}, "DRIVE": {},
	"ST": {}, "ST.": {}, "STREET": {},
	"AVE": {}, "AVENUE": {},
	"LN": {}, "LN.": {}, "LANE": {},
	"CIR": {}, "CIRCLE": {},
	"BLVD": {},
	"PKWY": {}, "PKWY.": {},
	"PIKE": {},
	"WAY": {},
	"PL": {}, "PLAZA": {}, "PLACE": {},
	"CT": {}, "COURT": {},
	"HWY": {}, "HIGHWAY": {},
	"PI": {}, "PI.": {},
	"PK": {},
	"ROW": {},
}

const streetTypeWindow = 5

// SplitNameAddress splits the text between permit and date into the
// establishment name and its street address. The address starts at the first
// number followed within five tokens by a street type; failing that, at the
// last number; failing that, the address is empty.
func SplitNameAddress(prefix string) (name, address string) {
	tokens := strings.Fields(prefix)
	if len(tokens) == 0 {
		return strings.TrimSpace(prefix), ""
	}

	addrIdx := -1
	lastNumeric := -1
	for i, tok := range tokens {
		if !isNumericCandidate(tok) {
			continue
		}
		lastNumeric = i
		if hasStreetTypeAfter(tokens, i) {
			addrIdx = i
			break
		}
	}
	if addrIdx < 0 {
		addrIdx = lastNumeric
	}
	if addrIdx < 0 {
		return strings.Join(tokens, " "), ""
	}
	return strings.Join(tokens[:addrIdx], " "), strings.Join(tokens[addrIdx:], " ")
}

func isNumericCandidate(tok string) bool {
	tok = strings.TrimPrefix(tok, "#")
	return tok != "" && tok[0] >= '0' && tok[0] <= '9'
}

func hasStreetTypeAfter(tokens []string, i int) bool {
	end := i + 1 + streetTypeWindow
	if end > len(tokens) {
		end = len(tokens)
	}
	for _, w := range tokens[i+1 : end] {
		if _, ok := streetTypes[strings.Trim(strings.ToUpper(w), ",")]; ok {
			return true
		}
	}
	return false
}
