package parsing

import "testing"

func TestSplitNameAddress(t *testing.T) {
	cases := []struct {
		prefix  string
		name    string
		address string
	}{
		{"#1 CHINA BUFFET 125 E. REYNOLDS ROAD, STE. 120", "#1 CHINA BUFFET", "125 E. REYNOLDS ROAD, STE. 120"},
		{"33 STAVES", "", "33 STAVES"},
		{"NO NUMBERS AT ALL", "NO NUMBERS AT ALL", ""},
		{"", "", ""},
		{"  PADDED   NAME  ", "PADDED NAME", ""},
		{"7 ELEVEN #12 100 MAIN ST.", "", "7 ELEVEN #12 100 MAIN ST."},
		{"CAFE 21 BAR AND GRILL TAVERN 400 OLD VINE STREET", "CAFE 21 BAR AND GRILL TAVERN", "400 OLD VINE STREET"},
		{"DINER 12 SOMETHING", "DINER", "12 SOMETHING"},
		{"BIG BOX STORE 3 NEW CIRCLE RD, #200", "BIG BOX STORE", "3 NEW CIRCLE RD, #200"},
		{"TACO 1 2 3 4 5 6 7 ROAD", "TACO 1 2", "3 4 5 6 7 ROAD"},
		{"SHOP 10 a b c d e LANE 20", "SHOP 10 a b c d e LANE", "20"},
		{"MARKET 4 elm court", "MARKET", "4 elm court"},
	}
	for _, tc := range cases {
		name, address := SplitNameAddress(tc.prefix)
		if name != tc.name || address != tc.address {
			t.Fatalf("SplitNameAddress(%q) = (%q, %q), want (%q, %q)", tc.prefix, name, address, tc.name, tc.address)
		}
	}
}

func TestSplitNameAddressTrailingCommaOnStreetType(t *testing.T) {
	name, address := SplitNameAddress("GAS N GO 901 BEAUMONT CENTRE PKWY, SUITE 1")
	if name != "GAS N GO" || address != "901 BEAUMONT CENTRE PKWY, SUITE 1" {
		t.Fatalf("unexpected split (%q, %q)", name, address)
	}
}
