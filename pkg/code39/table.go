package code39

type entry struct {
	pattern Pattern
	char    rune
}

// table maps element patterns to characters. Digits: 0 thick dark,
// 1 thin dark, 2 thick light, 3 thin light.
var table = [...]entry{
	{MustParsePattern("031312130"), 'A'},
	{MustParsePattern("130312130"), 'B'},
	{MustParsePattern("030312131"), 'C'},
	{MustParsePattern("131302130"), 'D'},
	{MustParsePattern("031302131"), 'E'},
	{MustParsePattern("130302131"), 'F'},
	{MustParsePattern("131312030"), 'G'},
	{MustParsePattern("031312031"), 'H'},
	{MustParsePattern("130312031"), 'I'},
	{MustParsePattern("131302031"), 'J'},
	{MustParsePattern("031313120"), 'K'},
	{MustParsePattern("130313120"), 'L'},
	{MustParsePattern("030313121"), 'M'},
	{MustParsePattern("131303120"), 'N'},
	{MustParsePattern("031303121"), 'O'},
	{MustParsePattern("130303121"), 'P'},
	{MustParsePattern("131313020"), 'Q'},
	{MustParsePattern("031313021"), 'R'},
	{MustParsePattern("130313021"), 'S'},
	{MustParsePattern("131303021"), 'T'},
	{MustParsePattern("021313130"), 'U'},
	{MustParsePattern("120313130"), 'V'},
	{MustParsePattern("020313131"), 'W'},
	{MustParsePattern("121303130"), 'X'},
	{MustParsePattern("021303131"), 'Y'},
	{MustParsePattern("120303131"), 'Z'},
	{MustParsePattern("121303031"), Sentinel},
}

// Size is the number of characters in the table.
const Size = len(table)

// Lookup scans the table for an exact pattern match.
func Lookup(p Pattern) (rune, bool) {
	for i := range table {
		if table[i].pattern == p {
			return table[i].char, true
		}
	}
	return 0, false
}

// Encode returns the pattern for c.
func Encode(c rune) (Pattern, bool) {
	for i := range table {
		if table[i].char == c {
			return table[i].pattern, true
		}
	}
	return Pattern{}, false
}

// Characters returns every encodable character in table order.
func Characters() []rune {
	chars := make([]rune, len(table))
	for i := range table {
		chars[i] = table[i].char
	}
	return chars
}
