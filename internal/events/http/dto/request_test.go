package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEventRequest() EventRequest {
	return EventRequest{
		Name:          "GopherCon",
		MaxAttendees:  500,
		CapacityScope: "event",
	}
}

func TestEventRequest_Validate(t *testing.T) {
	t.Run("Success_FreeEvent", func(t *testing.T) {
		req := validEventRequest()

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Success_PaidEvent", func(t *testing.T) {
		price := int64(5000)
		req := validEventRequest()
		req.PriceCents = &price
		req.Currency = "USD"

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Success_PerDateScope", func(t *testing.T) {
		req := validEventRequest()
		req.CapacityScope = "per_date"

		err := req.Validate()
		assert.NoError(t, err)
	})

	t.Run("Error_BlankName", func(t *testing.T) {
		req := validEventRequest()
		req.Name = "   "

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("Error_ZeroCapacity", func(t *testing.T) {
		req := validEventRequest()
		req.MaxAttendees = 0

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_attendees")
	})

	t.Run("Error_PricedWithoutCurrency", func(t *testing.T) {
		price := int64(5000)
		req := validEventRequest()
		req.PriceCents = &price

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency")
	})

	t.Run("Error_LowercaseCurrency", func(t *testing.T) {
		price := int64(5000)
		req := validEventRequest()
		req.PriceCents = &price
		req.Currency = "usd"

		err := req.Validate()
		assert.Error(t, err)
	})

	t.Run("Error_UnknownCapacityScope", func(t *testing.T) {
		req := validEventRequest()
		req.CapacityScope = "per_hour"

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "capacity_scope")
	})
}

func TestEventRequest_ToInput(t *testing.T) {
	price := int64(2500)
	closesAt := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	req := EventRequest{
		Name:          "GopherCon",
		MaxAttendees:  500,
		PriceCents:    &price,
		Currency:      "EUR",
		ClosesAt:      &closesAt,
		CapacityScope: "per_date",
	}

	input := req.ToInput()
	assert.Equal(t, "GopherCon", input.Name)
	assert.Equal(t, 500, input.MaxAttendees)
	assert.Equal(t, price, *input.PriceCents)
	assert.Equal(t, "EUR", input.Currency)
	assert.Equal(t, closesAt, *input.ClosesAt)
	assert.Equal(t, "per_date", string(input.CapacityScope))
}
