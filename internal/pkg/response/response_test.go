package response

import (
	"encoding/json"
	"testing"
)

func TestMarshal(t *testing.T) {
	cases := []struct {
		name string
		in   Status
		want string
	}{
		{"failure", Failure(), `{"status":false}`},
		{"updated", Success("UPDATED"), `{"status":"UPDATED"}`},
		{"null sentinel", Success("null"), `{"status":"null"}`},
		{"joined paths", Success("/a\n/b"), `{"status":"/a\n/b"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}
