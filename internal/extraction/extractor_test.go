package extraction

import (
	"strings"
	"testing"
)

func TestParseClaims(t *testing.T) {
	content := `[
		{"subject": "https://greenfund.example.org", "claim": "impact", "statement": "Planted 12000 trees", "howKnown": "DOCUMENT", "confidence": 0.9},
		{"subject": "https://greenfund.example.org", "claim": "rated", "statement": "Trained 300 farmers", "aspect": "impact:social", "amt": 300, "unit": "farmers"}
	]`

	claims, err := ParseClaims(content)
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("claim count = %d, want 2", len(claims))
	}
	if claims[0].Confidence == nil || *claims[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", claims[0].Confidence)
	}
	if claims[1].Amt == nil || *claims[1].Amt != 300 {
		t.Errorf("amt = %v, want 300", claims[1].Amt)
	}
}

func TestParseClaimsStripsCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "json fence",
			content: "```json\n[{\"subject\": \"https://example.org\", \"statement\": \"did a thing\"}]\n```",
		},
		{
			name:    "bare fence",
			content: "```\n[{\"subject\": \"https://example.org\", \"statement\": \"did a thing\"}]\n```",
		},
		{
			name:    "no fence",
			content: "[{\"subject\": \"https://example.org\", \"statement\": \"did a thing\"}]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseClaims(tt.content)
			if err != nil {
				t.Fatalf("ParseClaims failed: %v", err)
			}
			if len(claims) != 1 {
				t.Fatalf("claim count = %d, want 1", len(claims))
			}
		})
	}
}

func TestParseClaimsEmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "[]"} {
		claims, err := ParseClaims(content)
		if err != nil {
			t.Errorf("ParseClaims(%q) failed: %v", content, err)
		}
		if len(claims) != 0 {
			t.Errorf("ParseClaims(%q) = %d claims, want 0", content, len(claims))
		}
	}
}

func TestParseClaimsRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing subject",
			content: `[{"statement": "did a thing"}]`,
			wantErr: "missing subject",
		},
		{
			name:    "missing statement",
			content: `[{"subject": "https://example.org"}]`,
			wantErr: "missing statement",
		},
		{
			name:    "unknown howKnown",
			content: `[{"subject": "https://example.org", "statement": "x", "howKnown": "GUESSED"}]`,
			wantErr: "unknown howKnown",
		},
		{
			name:    "confidence out of range",
			content: `[{"subject": "https://example.org", "statement": "x", "confidence": 1.5}]`,
			wantErr: "out of range",
		},
		{
			name:    "not an array",
			content: `{"subject": "https://example.org"}`,
			wantErr: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaims(tt.content)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseClaimsDefaultsHowKnown(t *testing.T) {
	claims, err := ParseClaims(`[{"subject": "https://example.org", "statement": "x"}]`)
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if claims[0].HowKnown != "DOCUMENT" {
		t.Errorf("howKnown = %q, want DOCUMENT default", claims[0].HowKnown)
	}
}
