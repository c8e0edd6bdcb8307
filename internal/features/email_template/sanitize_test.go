package email_template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name: "merge tags in text survive",
			in:   `<p>Hi {{first_name}}, your rate is {{rate}}</p>`,
			want: []string{`<p>Hi {{first_name}}, your rate is {{rate}}</p>`},
		},
		{
			name: "merge tags in relative links survive",
			in:   `<a href="{{portal_link}}">Portal</a>`,
			want: []string{`href="{{portal_link}}"`},
		},
		{
			name: "merge tags in absolute links survive",
			in:   `<a href="https://portal.example.com/loans/{{loan_id}}">Loan</a>`,
			want: []string{`href="https://portal.example.com/loans/{{loan_id}}"`},
		},
		{
			name:    "scripts and handlers are stripped",
			in:      `<p onclick="steal()">Hello</p><script>alert(1)</script>`,
			want:    []string{`<p>Hello</p>`},
			notWant: []string{"<script", "onclick", "alert"},
		},
		{
			name: "email styling is kept",
			in:   `<p style="color: #333333; text-align: center" class="lead">Welcome</p>`,
			want: []string{`class="lead"`, "text-align: center"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHTML(tt.in)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
		})
	}
}
