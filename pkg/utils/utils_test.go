package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Jane Doe":           "jane-doe",
		"  123 Main St., #4 ": "123-main-st-4",
		"---":                "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDocumentFileName(t *testing.T) {
	if got := DocumentFileName("Pre-Approval", "Jane Doe", "pdf"); got != "pre-approval-jane-doe.pdf" {
		t.Errorf("got %q", got)
	}
	if got := DocumentFileName("daily report", "", ".xlsx"); got != "daily-report.xlsx" {
		t.Errorf("got %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateToken("user-1", []string{"admin"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || len(claims.Roles) != 1 {
		t.Errorf("unexpected claims: %+v", claims)
	}

	SetSecret("other-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with another secret must not validate")
	}
}
