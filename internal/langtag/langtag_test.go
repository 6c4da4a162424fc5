package langtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		code     string
		override string
		want     Language
	}{
		{code: "en", want: Language{Code: "en", Name: "english"}},
		{code: "es", want: Language{Code: "es", Name: "spanish"}},
		{code: "DE", want: Language{Code: "de", Name: "german"}},
		{code: "ru", want: Language{Code: "ru", Name: "russian"}},
		{code: "zh", want: Language{Code: "zh", Name: "simp_chinese"}},
		{code: "pt", want: Language{Code: "pt", Name: "braz_por"}},
		{code: "es", override: "castellano", want: Language{Code: "es", Name: "castellano"}},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.override, func(t *testing.T) {
			got, err := Resolve(tt.code, tt.override)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	_, err := Resolve("not a language", "")
	assert.Error(t, err)
}

func TestLanguageString(t *testing.T) {
	assert.Equal(t, "es (spanish)", Language{Code: "es", Name: "spanish"}.String())
}
