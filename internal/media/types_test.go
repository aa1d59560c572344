package media

import "testing"

func TestHostKindRoundTrip(t *testing.T) {
	kinds := []HostKind{Generic, CDA, VK, Sibnet, GoogleDrive, Mega, Dailymotion, Luluvdo, Lycrois}
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			got, err := ParseHostKind(k.String())
			if err != nil {
				t.Fatalf("ParseHostKind(%q) error: %v", k.String(), err)
			}
			if got != k {
				t.Errorf("ParseHostKind(%q) = %v, want %v", k.String(), got, k)
			}
		})
	}
}

func TestParseHostKindUnknown(t *testing.T) {
	if _, err := ParseHostKind("youtube"); err == nil {
		t.Error("expected error for unknown host kind")
	}
	if HostKind(99).String() != "unknown" {
		t.Errorf("String() of out-of-range kind = %q, want unknown", HostKind(99).String())
	}
}

func TestHostKindText(t *testing.T) {
	b, err := GoogleDrive.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "gdrive" {
		t.Errorf("MarshalText = %q, want gdrive", b)
	}

	var k HostKind
	if err := k.UnmarshalText([]byte(" Dailymotion ")); err != nil {
		t.Fatal(err)
	}
	if k != Dailymotion {
		t.Errorf("UnmarshalText = %v, want Dailymotion", k)
	}
}
