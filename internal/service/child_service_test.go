package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growtrack/internal/development"
	"growtrack/internal/models"
)

func TestChildService_CRUD(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "ana@example.com")
	other := env.user(t, "bia@example.com")

	// A zoned birth date keeps its calendar day when stored
	birth := time.Date(2023, time.January, 20, 23, 30, 0, 0, testZone)
	child, err := env.children.Create(parent.ID, ChildInput{Name: "  Lia ", BirthDate: birth, Gender: models.GenderFemale})
	require.NoError(t, err)
	assert.Equal(t, "Lia", child.Name)
	assert.Equal(t, date(2023, time.January, 20), child.BirthDate)

	got, err := env.children.Get(parent.ID, child.ID)
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)

	_, err = env.children.Get(other.ID, child.ID)
	assert.ErrorIs(t, err, ErrChildNotFound, "other parents cannot see the child")

	list, err := env.children.List(other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	name := "Lia Souza"
	updated, err := env.children.Update(parent.ID, child.ID, ChildUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Lia Souza", updated.Name)
	assert.Equal(t, models.GenderFemale, updated.Gender)

	assert.ErrorIs(t, env.children.Delete(other.ID, child.ID), ErrChildNotFound)
	require.NoError(t, env.children.Delete(parent.ID, child.ID))
	_, err = env.children.Get(parent.ID, child.ID)
	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestChildService_RejectsFutureBirthDate(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "ana@example.com")

	_, err := env.children.Create(parent.ID, ChildInput{Name: "Lia", BirthDate: date(2025, time.March, 11), Gender: models.GenderFemale})
	var inputErr *development.InputError
	require.True(t, errors.As(err, &inputErr), "got %v", err)
	assert.Equal(t, "birthDate", inputErr.Field)

	child := env.child(t, parent.ID, date(2025, time.March, 10))
	future := date(2026, time.January, 1)
	_, err = env.children.Update(parent.ID, child.ID, ChildUpdate{BirthDate: &future})
	assert.True(t, errors.As(err, &inputErr))
}

func TestChildService_RejectsBirthDateAfterAchievement(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "ana@example.com")
	child := env.child(t, parent.ID, date(2024, time.January, 1))
	achieved := date(2024, time.June, 1)
	_, err := env.dev.Create(parent.ID, child.ID, milestoneInput("Sits", 4, 7, &achieved))
	require.NoError(t, err)

	tests := []struct {
		name    string
		birth   time.Time
		wantErr bool
	}{
		{"after achievement", date(2024, time.August, 1), true},
		{"on achievement day", date(2024, time.June, 1), false},
		{"before achievement", date(2024, time.February, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birth := tt.birth
			_, err := env.children.Update(parent.ID, child.ID, ChildUpdate{BirthDate: &birth})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var inputErr *development.InputError
			require.True(t, errors.As(err, &inputErr), "got %v", err)
			assert.Equal(t, "birthDate", inputErr.Field)
		})
	}

	list, err := env.dev.List(parent.ID, child.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestChildService_Age(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "ana@example.com")
	child := env.child(t, parent.ID, date(2023, time.January, 20))

	tests := []struct {
		name   string
		now    time.Time
		months int
		text   string
	}{
		{"defaults to today", time.Time{}, 25, "2 years and 1 month"},
		{"day before monthly birthday", time.Date(2023, time.February, 19, 12, 0, 0, 0, testZone), 0, "0 months"},
		{"on monthly birthday", time.Date(2023, time.February, 20, 0, 0, 0, 0, testZone), 1, "1 month"},
		{"instant read in the clock zone", time.Date(2024, time.January, 20, 2, 0, 0, 0, time.UTC), 11, "11 months"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, err := env.children.Age(parent.ID, child.ID, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.months, age.AgeInMonths)
			assert.Equal(t, tt.text, age.Formatted)
		})
	}

	_, err := env.children.Age(parent.ID, child.ID, date(2022, time.December, 1))
	assert.Error(t, err, "ages before birth are invalid")
}
