package valueobject

// FinalConsumerNIF is the tax id reserved for unidentified buyers
const FinalConsumerNIF = "999999990"

// IsValidNIF checks a Portuguese tax number (NIF/NIPC): nine digits, a
// known leading digit, and a mod-11 check digit.
func IsValidNIF(nif string) bool {
	if len(nif) != 9 {
		return false
	}
	for _, r := range nif {
		if r < '0' || r > '9' {
			return false
		}
	}
	switch nif[0] {
	case '1', '2', '3', '5', '6', '7', '8', '9':
	case '4':
		if nif[1] != '5' {
			return false
		}
	default:
		return false
	}

	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(nif[i]-'0') * (9 - i)
	}
	check := 11 - sum%11
	if check >= 10 {
		check = 0
	}
	return check == int(nif[8]-'0')
}
