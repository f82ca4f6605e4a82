package classifier

import (
	"strings"
	"testing"
)

func TestDetectTransactionHash(t *testing.T) {
	hexHash := strings.Repeat("ab12", 16)   // 64 hex chars
	base58Hash := strings.Repeat("5KJvs", 8) // 40 base58 chars
	base64Hash := strings.Repeat("Qm+Z", 11) // 44 base64 chars

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "0x-prefixed hex",
			message: "confirm 0x" + hexHash + " please",
			want:    "0x" + hexHash,
		},
		{
			name:    "bare 64-char hex",
			message: "이 해시 " + hexHash + " 확인 가능한가요",
			want:    hexHash,
		},
		{
			name:    "base58 signature",
			message: "tx " + base58Hash,
			want:    base58Hash,
		},
		{
			name:    "base64 with padding",
			message: "hash: " + base64Hash + "==",
			want:    base64Hash + "==",
		},
		{
			name:    "prefixed hex beats bare hex",
			message: hexHash + " or 0x" + hexHash,
			want:    "0x" + hexHash,
		},
		{
			name:    "bare hex beats base58",
			message: base58Hash + " " + hexHash,
			want:    hexHash,
		},
		{
			name:    "too short hex is ignored",
			message: "code abc123def456",
			want:    "",
		},
		{
			name:    "63-char hex with zeros matches no family",
			message: strings.Repeat("a0", 31) + "a",
			want:    "",
		},
		{
			name:    "base58 shorter than 32 is ignored",
			message: "5KJvs5KJvs5KJvs5KJvs5KJvs",
			want:    "",
		},
		{
			name:    "ordinary sentence",
			message: "출금이 안 되는데 어떻게 하나요?",
			want:    "",
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTransactionHash(tt.message); got != tt.want {
				t.Errorf("DetectTransactionHash(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}
