package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalAvailable(t *testing.T) {
	user := &User{
		Deposit:  decimal.RequireFromString("100.5"),
		Interest: decimal.RequireFromString("29.5"),
	}
	assert.True(t, user.TotalAvailable().Equal(decimal.RequireFromString("130")))
}

func TestActorCanActFor(t *testing.T) {
	id := uuid.New()
	owner := Actor{ID: id, Email: "owner@example.com"}
	other := Actor{ID: uuid.New(), Email: "other@example.com"}
	admin := Actor{ID: uuid.New(), Email: "admin@example.com", IsAdmin: true}

	assert.True(t, owner.CanActFor(id, "anything@example.com"), "own id matches")
	assert.True(t, owner.CanActFor(uuid.Nil, "owner@example.com"), "own email matches")
	assert.False(t, other.CanActFor(id, "owner@example.com"))
	assert.True(t, admin.CanActFor(id, "owner@example.com"), "admin acts for anyone")
}

func TestActorRole(t *testing.T) {
	assert.Equal(t, "admin", Actor{IsAdmin: true}.Role())
	assert.Equal(t, "user", Actor{}.Role())
}
