package validation

import "regexp"

var (
	phoneRegex   = regexp.MustCompile(`^\+?[0-9][0-9 \-]{8,16}$`)
	pincodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

