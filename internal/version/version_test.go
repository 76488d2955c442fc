package version

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.20.1", "1.20.1", false},
		{"1.21", "1.21", false},
		{" 47.2.0 ", "47.2.0", false},
		{"1", "", true},
		{"14.23.5.2860", "14.23.5.2860", false},
		{"1.20.1.4.2", "", true},
		{"24w14a", "", true},
		{"1.20-pre1", "", true},
		{"", "", true},
	}

	for _, c := range cases {
		v, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", c.in, v)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if v.String() != c.want {
			t.Errorf("Parse(%q).String() = %q, want %q", c.in, v.String(), c.want)
		}
	}
}

func TestCompareAndSort(t *testing.T) {
	versions := ParseAll([]string{"1.8.9", "1.20.1", "snapshot", "1.20", "1.12.2"})
	if len(versions) != 4 {
		t.Fatalf("expected 4 parsed versions, got %d", len(versions))
	}

	Sort(versions)
	got := Strings(versions)
	want := []string{"1.20.1", "1.20", "1.12.2", "1.8.9"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", got, want)
		}
	}

	if New(1, 20, 0).Compare(versions[1]) != 0 {
		t.Error("1.20.0 should compare equal to 1.20")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		MC Version `json:"mc_version"`
	}

	data, err := json.Marshal(payload{MC: New(1, 20, 1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"mc_version":"1.20.1"}` {
		t.Fatalf("unexpected JSON %s", data)
	}

	var back payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.MC.Compare(New(1, 20, 1)) != 0 {
		t.Errorf("round trip mismatch: %v", back.MC)
	}

	if err := json.Unmarshal([]byte(`{"mc_version":"latest"}`), &back); err == nil {
		t.Error("expected error for invalid version text")
	}
}

func TestFourPartVersionsSortByBuild(t *testing.T) {
	versions := ParseAll([]string{"14.23.5.2859", "14.23.5.2860", "14.23.4.2768", "14.23.5"})
	if len(versions) != 4 {
		t.Fatalf("expected 4 parsed versions, got %d", len(versions))
	}

	Sort(versions)
	got := Strings(versions)
	want := []string{"14.23.5.2860", "14.23.5.2859", "14.23.5", "14.23.4.2768"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", got, want)
		}
	}
	if !IsValid("14.23.5.2860") {
		t.Error("IsValid should accept four-part versions")
	}
}
