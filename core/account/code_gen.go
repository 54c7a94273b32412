package account

import (
	"crypto/rand"
	"regexp"
)

// Teacher codes look like "PROFAB12CD": a fixed prefix followed by 6
// characters from an unambiguous upper-case alphabet. The code is shared
// out-of-band with students, so it must survive being read over the phone.
const (
	teacherCodePrefix = "PROF"
	teacherCodeLen    = 6
	teacherCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var teacherCodeRegex = regexp.MustCompile(`^PROF[A-Z0-9]{6}$`)

// GenerateTeacherCode returns a new random teacher code.
// Uniqueness is enforced by the store; callers retry on conflict.
func GenerateTeacherCode() (string, error) {
	buf := make([]byte, teacherCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, 0, len(teacherCodePrefix)+teacherCodeLen)
	code = append(code, teacherCodePrefix...)
	for _, b := range buf {
		code = append(code, teacherCodeChars[int(b)%len(teacherCodeChars)])
	}
	return string(code), nil
}

// IsTeacherCode reports whether s has the shape of a teacher code.
// The accepted character class is intentionally wider than the
// generation alphabet.
func IsTeacherCode(s string) bool {
	return teacherCodeRegex.MatchString(s)
}
