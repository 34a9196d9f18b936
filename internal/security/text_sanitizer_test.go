package security

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text passes through", input: "牛乳を買う", want: "牛乳を買う"},
		{name: "empty string", input: "", want: ""},
		{name: "script tag removed", input: `<script>alert("xss")</script>メモ`, want: "メモ"},
		{name: "all tags stripped", input: "<b>重要</b>な<i>予定</i>", want: "重要な予定"},
		{name: "img onerror removed", input: `<img src=x onerror=alert(1)>詳細`, want: "詳細"},
		{name: "anchor stripped keeps text", input: `<a href="https://example.com">リンク</a>`, want: "リンク"},
	}

	sanitizer := NewTextSanitizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力への再適用が出力を変えないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	input := `<script>alert(1)</script>本文<b>太字</b>`
	once := sanitizer.Sanitize(input)
	twice := sanitizer.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize not idempotent: %q != %q", once, twice)
	}
}
