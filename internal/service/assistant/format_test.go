package assistant

import "testing"

func TestFormatResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Asaan Account mai koi minimum balance nahi.",
			want: "Asaan Account mai koi minimum balance nahi.",
		},
		{
			name: "bold and code markers stripped",
			in:   "**Asaan Account** ke liye sirf `CNIC` chahiye.",
			want: "Asaan Account ke liye sirf CNIC chahiye.",
		},
		{
			name: "headings and bullets flattened",
			in:   "## Benefits\n- Free debit card\n* No minimum balance",
			want: "Benefits Free debit card No minimum balance",
		},
		{
			name: "whitespace collapsed",
			in:   "Account   kholne ke liye\n\n\nbranch tashreef le jayen.",
			want: "Account kholne ke liye branch tashreef le jayen.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResponse(tt.in); got != tt.want {
				t.Errorf("FormatResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
