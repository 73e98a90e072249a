package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string  `json:"usn" label:"Username" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Nickname *string `json:"nick,omitempty" validate:"omitempty,min=2"`
	Minutes  int64   `json:"minutes" label:"Minutes" validate:"gt=0"`
	Secret   string  `json:"secret" label:"Secret" validate:"omitempty,max=8,maxbytes=8"`
	Internal string  `json:"-"`
}

func TestStruct(t *testing.T) {
	short := "x"
	ok := "xy"

	tests := []struct {
		name string
		in   signup
		want map[string]string
	}{
		{
			name: "valid",
			in:   signup{Username: "alice", Email: "a@x.com", Minutes: 5},
			want: nil,
		},
		{
			name: "valid optional",
			in:   signup{Username: "alice", Email: "a@x.com", Nickname: &ok, Minutes: 5},
			want: nil,
		},
		{
			name: "short username uses label",
			in:   signup{Username: "al", Email: "a@x.com", Minutes: 5},
			want: map[string]string{"usn": "Username must be at least 3 characters"},
		},
		{
			name: "bad email",
			in:   signup{Username: "alice", Email: "nope", Minutes: 5},
			want: map[string]string{"email": "Invalid email address"},
		},
		{
			name: "optional present but short",
			in:   signup{Username: "alice", Email: "a@x.com", Nickname: &short, Minutes: 5},
			want: map[string]string{"nick": "nick must be at least 2 characters"},
		},
		{
			name: "multibyte within character limit but over byte limit",
			in:   signup{Username: "alice", Email: "a@x.com", Minutes: 5, Secret: "ééééé"},
			want: map[string]string{"secret": "Secret must be at most 8 bytes"},
		},
		{
			name: "multibyte at byte limit",
			in:   signup{Username: "alice", Email: "a@x.com", Minutes: 5, Secret: "éééé"},
			want: nil,
		},
		{
			name: "non positive",
			in:   signup{Username: "alice", Email: "a@x.com", Minutes: 0},
			want: map[string]string{"minutes": "Minutes must be positive"},
		},
		{
			name: "several",
			in:   signup{},
			want: map[string]string{
				"usn":     "Username is required",
				"email":   "email is required",
				"minutes": "Minutes must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Struct(tt.in))
		})
	}
}

func TestStructPointer(t *testing.T) {
	got := Struct(&signup{Username: "al", Email: "a@x.com", Minutes: 1})
	assert.Equal(t, map[string]string{"usn": "Username must be at least 3 characters"}, got)
}
