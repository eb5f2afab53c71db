package di

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		Name string
		In   string
		Out  string
	}{
		{"lower-cases", "Value", "value"},
		{"drops punctuation", "my-module.name", "mymodulename"},
		{"drops spaces", "hello world", "helloworld"},
		{"keeps digits", "2value", "2value"},
		{"keeps trailing digits", "value2", "value2"},
		{"drops non-ascii", "välue", "vlue"},
		{"empty", "", ""},
		{"only punctuation", "--.__", ""},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require.Equal(t, tt.Out, normalize(tt.In))
		})
	}
}

func TestNormalizeInjectorName(t *testing.T) {
	cases := []struct {
		Name string
		In   string
		Out  string
	}{
		{"plain", "app", "app"},
		{"mixed case", "My-App", "myapp"},
		{"strips leading digits", "1app", "app"},
		{"strips digits behind punctuation", "-2app", "app"},
		{"keeps inner digits", "app2", "app2"},
		{"all digits", "123", ""},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require.Equal(t, tt.Out, normalizeInjectorName(tt.In))
		})
	}
}
