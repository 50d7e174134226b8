package tasks

import (
	"slices"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		local      []string
		remote     []string
		wantAdd    []string
		wantRemove []string
	}{
		{"both empty", nil, nil, []string{}, []string{}},
		{"identical", []string{"a", "b"}, []string{"b", "a"}, []string{}, []string{}},
		{"only local", []string{"c", "a"}, nil, []string{"a", "c"}, []string{}},
		{"only remote", nil, []string{"d"}, []string{}, []string{"d"}},
		{"overlap", []string{"A", "B", "C"}, []string{"B", "C", "D"}, []string{"A"}, []string{"D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, remote := IDSet{}, IDSet{}
			for _, id := range tt.local {
				local.Add(film(id, "", 0))
			}
			for _, id := range tt.remote {
				remote.Add(film(id, "", 0))
			}

			delta := Diff(local, remote)
			if !slices.Equal(delta.ToAdd, tt.wantAdd) {
				t.Errorf("expected add %v, got %v", tt.wantAdd, delta.ToAdd)
			}
			if !slices.Equal(delta.ToRemove, tt.wantRemove) {
				t.Errorf("expected remove %v, got %v", tt.wantRemove, delta.ToRemove)
			}
			if delta.Empty() != (len(tt.wantAdd) == 0 && len(tt.wantRemove) == 0) {
				t.Errorf("unexpected Empty() = %v", delta.Empty())
			}

			for _, id := range delta.ToAdd {
				if slices.Contains(delta.ToRemove, id) {
					t.Errorf("%s is both added and removed", id)
				}
			}

			applied := IDSet{}
			for id, label := range remote {
				if !slices.Contains(delta.ToRemove, id) {
					applied[id] = label
				}
			}
			for _, id := range delta.ToAdd {
				applied[id] = id
			}
			if !slices.Equal(applied.IDs(), local.IDs()) {
				t.Errorf("applying delta gave %v, expected %v", applied.IDs(), local.IDs())
			}
			if !Diff(local, applied).Empty() {
				t.Error("second diff after applying must be empty")
			}
		})
	}
}

func TestIDSet(t *testing.T) {
	t.Run("ignores empty IDs", func(t *testing.T) {
		s := NewIDSet(film("", "Nothing", 0), film("a", "Alien", 1979))
		if len(s) != 1 || !s.Has("a") {
			t.Errorf("expected only a, got %v", s)
		}
	})

	t.Run("keeps best label", func(t *testing.T) {
		s := IDSet{}
		s.Add(film("a", "", 0))
		s.Add(film("a", "Alien", 1979))
		s.Add(film("a", "Other", 0))
		if s["a"] != "Alien (1979)" {
			t.Errorf("expected labelled entry, got %q", s["a"])
		}
	})

	t.Run("films carry labels", func(t *testing.T) {
		s := NewIDSet(film("a", "Alien", 1979))
		films := s.Films([]string{"a"})
		if len(films) != 1 || films[0].Label() != "Alien (1979)" {
			t.Errorf("unexpected films %+v", films)
		}
	})
}
