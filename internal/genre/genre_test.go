package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"  Mystery  ", "mystery"},
		{"Café Society", "cafe-society"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sci-Fi", "science fiction"},
		{"SCIFI", "science fiction"},
		{"YA", "young adult"},
		{"Noir", "crime"},
		{"Historical", "historical fiction"},
		{"Fantasy", "fantasy"},
		{"Space Opera", "space opera"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestDefaultFor(t *testing.T) {
	assert.Equal(t, Defaults[0], DefaultFor(0))
	assert.Equal(t, Defaults[0], DefaultFor(len(Defaults)))
	assert.NotEmpty(t, DefaultFor(240))
}
