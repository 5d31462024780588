package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateEmail(%q) error = %v", tt.email, err)
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Ana Souza",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "Ana",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "A",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateName(%q) error = %v", tt.input, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword() error = %v", err)
		})
	}
}

type childPayload struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	BirthDate  string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender     string `json:"gender" validate:"required,gender"`
	Recurrence string `json:"recurrence" validate:"recurrence"`
	Category   string `json:"category" validate:"omitempty,milestone_category"`
	Topic      string `json:"topic" validate:"omitempty,topic_category"`
	Permission string `json:"permission" validate:"omitempty,share_permission"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
}

func TestStruct(t *testing.T) {
	valid := childPayload{Name: "Lia", BirthDate: "2023-05-10", Gender: "female"}

	tests := []struct {
		name      string
		mutate    func(p *childPayload)
		wantField string
	}{
		{name: "valid payload", mutate: func(p *childPayload) {}},
		{name: "missing name", mutate: func(p *childPayload) { p.Name = "" }, wantField: "name"},
		{name: "bad birth date", mutate: func(p *childPayload) { p.BirthDate = "10/05/2023" }, wantField: "birthDate"},
		{name: "unknown gender", mutate: func(p *childPayload) { p.Gender = "robot" }, wantField: "gender"},
		{name: "recurrence empty is allowed", mutate: func(p *childPayload) { p.Recurrence = "" }},
		{name: "recurrence weekly", mutate: func(p *childPayload) { p.Recurrence = "weekly" }},
		{name: "recurrence yearly", mutate: func(p *childPayload) { p.Recurrence = "yearly" }, wantField: "recurrence"},
		{name: "milestone category", mutate: func(p *childPayload) { p.Category = "motor" }},
		{name: "bad milestone category", mutate: func(p *childPayload) { p.Category = "sleep" }, wantField: "category"},
		{name: "topic category", mutate: func(p *childPayload) { p.Topic = "saude" }},
		{name: "bad topic category", mutate: func(p *childPayload) { p.Topic = "sports" }, wantField: "topic"},
		{name: "bad permission", mutate: func(p *childPayload) { p.Permission = "admin" }, wantField: "permission"},
		{name: "hex color", mutate: func(p *childPayload) { p.Color = "#4F46E5" }},
		{name: "bad color", mutate: func(p *childPayload) { p.Color = "blue" }, wantField: "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := Struct(p)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Contains(t, ve.Message, tt.wantField)
		})
	}
}
