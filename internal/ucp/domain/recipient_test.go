package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecipient(t *testing.T) {
	t.Run("pix requires a typed key", func(t *testing.T) {
		r := Recipient{Type: "pix", PixKey: "maria@example.com", PixKeyType: "email", Name: "Maria Silva"}
		assert.NoError(t, ValidateRecipient("pix", r))

		r.PixKeyType = "iban"
		assert.ErrorIs(t, ValidateRecipient("pix", r), ErrInvalidRecipient)

		r.PixKeyType = "email"
		r.PixKey = ""
		assert.ErrorIs(t, ValidateRecipient("pix", r), ErrInvalidRecipient)
	})

	t.Run("spei requires an 18 digit clabe", func(t *testing.T) {
		r := Recipient{Type: "spei", Clabe: "032180000118359719", Name: "Juan Perez"}
		assert.NoError(t, ValidateRecipient("spei", r))

		r.Clabe = "03218000011835971"
		assert.ErrorIs(t, ValidateRecipient("spei", r), ErrInvalidRecipient)

		r.Clabe = "03218000011835971X"
		assert.ErrorIs(t, ValidateRecipient("spei", r), ErrInvalidRecipient)
	})

	t.Run("ach requires routing and account numbers", func(t *testing.T) {
		r := Recipient{Type: "ach", RoutingNumber: "021000021", AccountNumber: "123456789", Name: "Acme Corp"}
		assert.NoError(t, ValidateRecipient("ach", r))

		r.RoutingNumber = "21000021"
		assert.ErrorIs(t, ValidateRecipient("ach", r), ErrInvalidRecipient)

		r.RoutingNumber = "021000021"
		r.AccountNumber = ""
		assert.ErrorIs(t, ValidateRecipient("ach", r), ErrInvalidRecipient)
	})

	t.Run("recipient type must match the corridor", func(t *testing.T) {
		r := Recipient{Type: "pix", PixKey: "maria@example.com", PixKeyType: "email", Name: "Maria Silva"}
		assert.ErrorIs(t, ValidateRecipient("spei", r), ErrInvalidRecipient)
	})

	t.Run("name is always required", func(t *testing.T) {
		r := Recipient{Type: "pix", PixKey: "maria@example.com", PixKeyType: "email"}
		assert.ErrorIs(t, ValidateRecipient("pix", r), ErrInvalidRecipient)
	})

	t.Run("unknown corridor", func(t *testing.T) {
		r := Recipient{Type: "swift", Name: "Anyone"}
		assert.ErrorIs(t, ValidateRecipient("swift", r), ErrUnsupportedCorridor)
	})
}

func TestDestinationKey(t *testing.T) {
	assert.Equal(t, "maria@example.com", Recipient{Type: "pix", PixKey: "maria@example.com"}.DestinationKey())
	assert.Equal(t, "032180000118359719", Recipient{Type: "spei", Clabe: "032180000118359719"}.DestinationKey())
	assert.Equal(t, "123456789", Recipient{Type: "ach", AccountNumber: "123456789"}.DestinationKey())
	assert.Equal(t, "", Recipient{Type: "other"}.DestinationKey())
}
