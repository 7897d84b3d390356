package vectorstore

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on punctuation",
			input: "Connection REFUSED: dial-tcp failed!",
			want:  []string{"connection", "refused", "dial", "tcp", "failed"},
		},
		{
			name:  "underscore kept inside identifiers",
			input: "conn_pool exhausted",
			want:  []string{"conn_pool", "exhausted"},
		},
		{
			name:  "single characters dropped",
			input: "a b io error",
			want:  []string{"io", "error"},
		},
		{
			name:  "digits are terms",
			input: "error 502 from upstream",
			want:  []string{"error", "502", "from", "upstream"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
		{
			name:  "only punctuation",
			input: "!!! ---",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
