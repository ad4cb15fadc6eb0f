package backtrace

import (
	"reflect"
	"testing"
)

func TestParseAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "esp32 backtrace",
			input: "Backtrace: 0x400d1234:0x3ffb1f00 0x400d5678:0x3ffb1ec0",
			want:  []string{"0x400d1234", "0x400d5678"},
		},
		{
			name:  "corrupted marker and double spaces",
			input: "Backtrace:  0x40081f2e:0x3ffbe1e0  0x400e3b11:0x3ffbe200 |<-CORRUPTED",
			want:  []string{"0x40081f2e", "0x400e3b11"},
		},
		{
			name:  "tabs and newlines",
			input: "0x400d1234:0x3ffb1f00\n\t0x400d5678:0x3ffb1ec0\n",
			want:  []string{"0x400d1234", "0x400d5678"},
		},
		{
			name:  "token without offset skipped",
			input: "PC: 0x400d1234 Backtrace: 0x400d5678:0x3ffb1ec0",
			want:  []string{"0x400d5678"},
		},
		{
			name:  "malformed hex skipped",
			input: "0xZZZZ:0x3ffb1f00 0x:0x1 0x400d5678:0x3ffb1ec0",
			want:  []string{"0x400d5678"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "no frames",
			input: "Guru Meditation Error: Core  1 panic'ed (LoadProhibited)",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAddresses(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAddresses(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
