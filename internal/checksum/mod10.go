// =============================================================================
// Swiss QR Reader - Checksum Engine (Swiss recursive MOD-10)
// =============================================================================
//
// The recursive modulo 10 algorithm protects QR references ("QRR"), which are
// 27-digit references whose last digit is the check digit. It is purely table
// driven: a state register walks the transition table digit by digit and the
// final state is substituted into the expected check digit.
//
// =============================================================================

package checksum

import "fmt"

// mod10Table is the transition table: mod10Table[state][digit] is the next state.
var mod10Table = [10][10]int{
	{0, 9, 4, 6, 8, 2, 7, 1, 3, 5},
	{9, 4, 6, 8, 2, 7, 1, 3, 5, 0},
	{4, 6, 8, 2, 7, 1, 3, 5, 0, 9},
	{6, 8, 2, 7, 1, 3, 5, 0, 9, 4},
	{8, 2, 7, 1, 3, 5, 0, 9, 4, 6},
	{2, 7, 1, 3, 5, 0, 9, 4, 6, 8},
	{7, 1, 3, 5, 0, 9, 4, 6, 8, 2},
	{1, 3, 5, 0, 9, 4, 6, 8, 2, 7},
	{3, 5, 0, 9, 4, 6, 8, 2, 7, 1},
	{5, 0, 9, 4, 6, 8, 2, 7, 1, 3},
}

// mod10CheckDigits maps the final state to the expected check digit.
var mod10CheckDigits = [10]int{0, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// Mod10CheckDigit returns the check digit that must follow digits.
//
// RETURNS:
//   - The check digit in [0, 9].
//   - ErrMalformedInput if digits contains anything other than ASCII digits.
func Mod10CheckDigit(digits string) (int, error) {
	state := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q at position %d", ErrMalformedInput, c, i)
		}
		state = mod10Table[state][c-'0']
	}
	return mod10CheckDigits[state], nil
}

// VerifyMod10 reports whether the last digit of reference is the recursive
// MOD-10 check digit of the digits before it.
//
// An empty reference is invalid. Non-digit input returns ErrMalformedInput.
func VerifyMod10(reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}

	last := reference[len(reference)-1]
	if last < '0' || last > '9' {
		return false, fmt.Errorf("%w: %q at position %d", ErrMalformedInput, last, len(reference)-1)
	}

	expected, err := Mod10CheckDigit(reference[:len(reference)-1])
	if err != nil {
		return false, err
	}
	return expected == int(last-'0'), nil
}
