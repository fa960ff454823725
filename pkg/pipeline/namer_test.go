package pipeline

import "testing"

func TestNamerReserve_Collisions(t *testing.T) {
	n := NewNamer()

	tests := []struct {
		give string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"report.pdf", "report_1.pdf"},
		{"report.pdf", "report_2.pdf"},
		{"manual.docx", "manual.docx"},
		{"notes", "notes"},
		{"notes", "notes_1"},
		{"archive.tar.gz", "archive.tar.gz"},
		{"archive.tar.gz", "archive.tar_1.gz"},
	}
	for _, tt := range tests {
		if got := n.Reserve(tt.give); got != tt.want {
			t.Errorf("Reserve(%q) = %q, want %q", tt.give, got, tt.want)
		}
	}
}

func TestNamerReserve_SkipsPreclaimedVariant(t *testing.T) {
	n := NewNamer()
	n.Reserve("report_1.pdf")
	n.Reserve("report.pdf")

	if got := n.Reserve("report.pdf"); got != "report_2.pdf" {
		t.Errorf("Reserve() = %q, want report_2.pdf when report_1.pdf is taken", got)
	}
}

func TestSplitExtension(t *testing.T) {
	tests := []struct {
		name     string
		wantStem string
		wantExt  string
	}{
		{"report.pdf", "report", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"notes", "notes", ""},
		{".hidden", "", ".hidden"},
	}
	for _, tt := range tests {
		stem, ext := splitExtension(tt.name)
		if stem != tt.wantStem || ext != tt.wantExt {
			t.Errorf("splitExtension(%q) = (%q, %q), want (%q, %q)",
				tt.name, stem, ext, tt.wantStem, tt.wantExt)
		}
	}
}
