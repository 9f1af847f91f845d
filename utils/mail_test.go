package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNewOrderEmail(t *testing.T) {
	body, err := RenderEmail(filepath.Join("..", "templates", "new_order.html"), OrderEmailData{
		OrderRef:      "AB12CD34",
		BuyerName:     "Asha <script>",
		Phone:         "9876543210",
		DessertName:   "Basundi",
		Quantity:      2,
		TotalAmount:   78,
		TransactionID: "UPI123",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "New order #AB12CD34")
	assert.Contains(t, body, "Basundi &times; 2")
	assert.Contains(t, body, "&#8377;78")
	assert.Contains(t, body, "Asha &lt;script&gt;")
}

func TestRenderEmailMissingTemplate(t *testing.T) {
	_, err := RenderEmail("does-not-exist.html", nil)
	assert.ErrorContains(t, err, "template parse error")
}

func TestMailConfigEnabled(t *testing.T) {
	assert.False(t, MailConfig{}.Enabled())
	assert.True(t, MailConfig{From: "shop@example.com", Address: "smtp.example.com:587"}.Enabled())
}
