package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	got := StripHTML(`  <b>Living</b> room &lt;script&gt;alert(1)&lt;/script&gt; `)
	if got != "Living room alert(1)" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  Main\t bedroom \n", 0, "Main bedroom"},
		{"<i>Kitchen</i>", 50, "Kitchen"},
		{"Slaapkamer één", 12, "Slaapkamer é"},
		{"Hall way", 5, "Hall"},
	}
	for _, tc := range cases {
		if got := Label(tc.in, tc.max); got != tc.want {
			t.Fatalf("Label(%q, %d): expected %q, got %q", tc.in, tc.max, tc.want, got)
		}
	}
}

func TestNoteKeepsLineBreaks(t *testing.T) {
	got := Note("U-value from table\n\n  <br>wall   age estimated\n", 0)
	if got != "U-value from table\nwall age estimated" {
		t.Fatalf("unexpected note %q", got)
	}
	if got := Note("abcdef", 3); got != "abc" {
		t.Fatalf("expected truncation, got %q", got)
	}
}
