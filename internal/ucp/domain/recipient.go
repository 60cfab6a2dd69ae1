package domain

import "strings"

var pixKeyTypes = map[string]bool{
	"email":  true,
	"cpf":    true,
	"cnpj":   true,
	"phone":  true,
	"random": true,
}

// ValidateRecipient checks that a recipient carries the fields the
// corridor's rail requires.
func ValidateRecipient(corridor string, r Recipient) error {
	if r.Name == "" {
		return ErrInvalidRecipient
	}

	switch corridor {
	case CorridorPix:
		if r.Type != CorridorPix || r.PixKey == "" || !pixKeyTypes[r.PixKeyType] {
			return ErrInvalidRecipient
		}
	case CorridorSpei:
		if r.Type != CorridorSpei || len(r.Clabe) != 18 || !isDigits(r.Clabe) {
			return ErrInvalidRecipient
		}
	case CorridorACH:
		if r.Type != CorridorACH || len(r.RoutingNumber) != 9 || !isDigits(r.RoutingNumber) || r.AccountNumber == "" {
			return ErrInvalidRecipient
		}
	default:
		return ErrUnsupportedCorridor
	}

	return nil
}

// DestinationKey returns the rail-level address of the recipient, used
// for failure-injection matching and event payloads.
func (r Recipient) DestinationKey() string {
	switch r.Type {
	case CorridorPix:
		return r.PixKey
	case CorridorSpei:
		return r.Clabe
	case CorridorACH:
		return r.AccountNumber
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(c rune) bool { return c < '0' || c > '9' }) == -1
}
