package decoder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"radiocode/internal/shared"
)

// securityHashPattern is ASCII only: one letter, three digits.
var securityHashPattern = regexp.MustCompile(`^[A-Z][0-9]{3}$`)

// securityHashDecoder implements the four-character checksum shared by
// Renault-group radios. display is the make echoed in responses.
type securityHashDecoder struct {
	display string
	req     shared.DecodeRequest
}

func newSecurityHashFactory(display string) Factory {
	return func(req shared.DecodeRequest) (Decoder, error) {
		return &securityHashDecoder{display: display, req: req}, nil
	}
}

func (d *securityHashDecoder) Decode() (*shared.DecodeResponse, error) {
	if d.req.SecurityHash == "" {
		return nil, newError(ErrMissingField, d.display+" requires a security_hash")
	}
	code, err := d.Compute()
	if err != nil {
		return nil, err
	}
	return &shared.DecodeResponse{
		Make:         d.display,
		SecurityHash: d.req.SecurityHash,
		UnlockCode:   code,
	}, nil
}

func (d *securityHashDecoder) Compute() (string, error) {
	code := strings.ToUpper(strings.TrimSpace(d.req.SecurityHash))
	invalid := newError(ErrInvalidInput, fmt.Sprintf("Invalid %s security hash format (Expected format: B123, C321, D456, etc.)", d.display))
	if !securityHashPattern.MatchString(code) || strings.HasPrefix(code, "A0") {
		return "", invalid
	}
	n, ok := securityHashCode(code)
	if !ok {
		return "", invalid
	}
	// No zero padding, unlike Ford.
	return strconv.Itoa(n), nil
}

// securityHashCode runs the checksum over a validated code. It reports false
// when the derived divisor is not positive; with the A0 exclusion in place
// that cannot happen for [A-Z][0-9]{3}.
func securityHashCode(code string) (int, bool) {
	c0, c1, c2, c3 := int(code[0]), int(code[1]), int(code[2]), int(code[3])

	x := c1 + c0*10 - 698
	if x <= 0 {
		return 0, false
	}
	y := c3 + c2*10 + x - 528
	z := (y * 7) % 100

	return z/10 + (z%10)*10 + ((259%x)%100)*100, true
}
