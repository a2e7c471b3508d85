package domain_test

import (
	"reflect"
	"testing"

	"blog/internal/domain"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "x,y", []string{"x", "y"}},
		{"spaces", " go , web ,  api", []string{"go", "web", "api"}},
		{"empty segments", "a,,b,", []string{"a", "b"}},
		{"empty", "", []string{}},
		{"blank", "  ,  ", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ParseTags(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseTags(%q) = %#v; want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestPostHasLike(t *testing.T) {
	p := domain.Post{Likes: []int64{3, 7}}
	if !p.HasLike(7) {
		t.Error("expected 7 to be liked")
	}
	if p.HasLike(4) {
		t.Error("expected 4 not to be liked")
	}
}
