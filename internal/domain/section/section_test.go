package section

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestValidatePermutation(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	cases := []struct {
		name     string
		existing []uuid.UUID
		ids      []uuid.UUID
		wantErr  bool
	}{
		{"same order", []uuid.UUID{a, b, c}, []uuid.UUID{a, b, c}, false},
		{"reversed", []uuid.UUID{a, b, c}, []uuid.UUID{c, b, a}, false},
		{"both empty", nil, nil, false},
		{"missing id", []uuid.UUID{a, b, c}, []uuid.UUID{a, b}, true},
		{"duplicate", []uuid.UUID{a, b}, []uuid.UUID{a, a}, true},
		{"foreign id", []uuid.UUID{a, b}, []uuid.UUID{a, uuid.New()}, true},
		{"empty with entries", []uuid.UUID{a}, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePermutation(tc.existing, tc.ids)
			if tc.wantErr && !errors.Is(err, ErrReorderMismatch) {
				t.Fatalf("expected ErrReorderMismatch, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestSetVisible(t *testing.T) {
	s := Set{
		Skills: []Skill{
			{Base: Base{IsVisible: true}, Name: "Go"},
			{Base: Base{IsVisible: false}, Name: "Perl"},
		},
	}
	v := s.Visible()
	if len(v.Skills) != 1 || v.Skills[0].Name != "Go" {
		t.Fatalf("unexpected visible skills: %+v", v.Skills)
	}
	if v.Experience == nil || len(v.Experience) != 0 {
		t.Fatalf("expected empty non-nil experience slice")
	}
}
