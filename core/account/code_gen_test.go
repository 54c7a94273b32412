package account

import (
	"strings"
	"testing"
)

func TestGenerateTeacherCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := GenerateTeacherCode()
		if err != nil {
			t.Fatalf("GenerateTeacherCode() failed: %v", err)
		}
		if !IsTeacherCode(code) {
			t.Fatalf("GenerateTeacherCode() = %q, not a valid code", code)
		}
		for _, c := range code[len(teacherCodePrefix):] {
			if !strings.ContainsRune(teacherCodeChars, c) {
				t.Fatalf("GenerateTeacherCode() = %q, %q not in alphabet", code, c)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Errorf("GenerateTeacherCode() returned the same code %d times", 100)
	}
}

func TestIsTeacherCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid", code: "PROFAB12CD", want: true},
		{name: "ambiguous chars accepted", code: "PROF0O1IAB", want: true},
		{name: "empty", code: ""},
		{name: "lowercase", code: "profab12cd"},
		{name: "missing prefix", code: "AB12CDEF92"},
		{name: "too short", code: "PROFAB12C"},
		{name: "too long", code: "PROFAB12CDE"},
		{name: "trailing garbage", code: "PROFAB12CD "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTeacherCode(tt.code); got != tt.want {
				t.Errorf("IsTeacherCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
