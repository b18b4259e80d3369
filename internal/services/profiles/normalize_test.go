package profiles

import (
	"reflect"
	"testing"
)

func TestNormalizeSocialLinksWhatsappDigitsOnly(t *testing.T) {
	out := NormalizeSocialLinks(map[string]any{
		"whatsapp":  "+52 (55) 1234-5678",
		"instagram": "  @bailarina  ",
	})

	if out["whatsapp"] != "525512345678" {
		t.Fatalf("unexpected whatsapp: %v", out["whatsapp"])
	}
	if out["instagram"] != "@bailarina" {
		t.Fatalf("unexpected instagram: %v", out["instagram"])
	}
}

func TestNormalizeSocialLinksEmptyBecomesNull(t *testing.T) {
	out := NormalizeSocialLinks(map[string]any{
		"facebook": "   ",
		"whatsapp": "+-() ",
		"tiktok":   "dancer",
	})

	if v, ok := out["facebook"]; !ok || v != nil {
		t.Fatalf("blank facebook should become explicit null, got %v", v)
	}
	if v, ok := out["whatsapp"]; !ok || v != nil {
		t.Fatalf("digitless whatsapp should become explicit null, got %v", v)
	}
	if out["tiktok"] != "dancer" {
		t.Fatalf("unexpected tiktok: %v", out["tiktok"])
	}
}

func TestNormalizeSocialLinksNonStringPassThrough(t *testing.T) {
	out := NormalizeSocialLinks(map[string]any{"visible": true})
	if out["visible"] != true {
		t.Fatalf("non-string value must pass through, got %v", out["visible"])
	}
}

func TestNormalizeAnswersTrimsAndNulls(t *testing.T) {
	out := NormalizeAnswers(map[string]any{
		"estilo":      "  cubano  ",
		"historia":    "",
		"aniversario": 2019,
	})

	if out["estilo"] != "cubano" {
		t.Fatalf("unexpected estilo: %v", out["estilo"])
	}
	if v, ok := out["historia"]; !ok || v != nil {
		t.Fatalf("empty answer should become null, got %v", v)
	}
	if out["aniversario"] != 2019 {
		t.Fatalf("non-string answer must pass through, got %v", out["aniversario"])
	}
}

func TestEnsureIDListFromMixedAnySlice(t *testing.T) {
	got := EnsureIDList([]any{float64(3), "x", float64(0), nil, 7, int64(11)})
	want := []int64{3, 7, 11}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestEnsureIDListNonListCollapses(t *testing.T) {
	if got := EnsureIDList("not-a-list"); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if got := EnsureIDList(nil); len(got) != 0 {
		t.Fatalf("expected empty list for nil, got %v", got)
	}
}

func TestEnsureIDListDropsZeros(t *testing.T) {
	got := EnsureIDList([]int64{0, 4, 0, 9})
	if !reflect.DeepEqual(got, []int64{4, 9}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestEnsureIDListDropsNegatives(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  []int64
	}{
		{"int64 slice", []int64{-3, 4, -1, 9}, []int64{4, 9}},
		{"int slice", []int{-2, 5}, []int64{5}},
		{"float64 slice", []float64{-7, 1, 3}, []int64{1, 3}},
		{"any slice", []any{float64(-4), float64(6), int64(-1), 8}, []int64{6, 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EnsureIDList(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected ids: %v", got)
			}
		})
	}
}

func TestCoerceEmptyToNulls(t *testing.T) {
	out := CoerceEmptyToNulls(map[string]any{
		"bio":          "   ",
		"display_name": "Ana",
		"ritmos":       []int64{1},
	})

	if v, ok := out["bio"]; !ok || v != nil {
		t.Fatalf("blank bio should be null, got %v", v)
	}
	if out["display_name"] != "Ana" {
		t.Fatalf("unexpected display_name: %v", out["display_name"])
	}
	if _, ok := out["ritmos"].([]int64); !ok {
		t.Fatalf("non-string value must pass through")
	}
}
