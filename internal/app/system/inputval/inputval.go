// Package inputval validates decoded request bodies using struct tags.
//
//	type createStudyInput struct {
//	    Path  string `json:"path" validate:"required,studypath" label:"Path"`
//	    Title string `json:"title" validate:"required,max=50" label:"Title"`
//	}
//
// Rules: required, min=N, max=N (counted in runes), email, httpurl,
// objectid, studypath, nickname. Rules other than required skip empty strings.
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Result collects the failures from Validate in field order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every string field of the struct v (or *v) that carries a
// validate tag. Only the first failing rule per field is reported.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || f.Type.Kind() != reflect.String {
			continue
		}
		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}
		val := rv.Field(i).String()
		for _, rule := range strings.Split(tag, ",") {
			if msg, ok := check(rule, label, val); !ok {
				name, _, _ := strings.Cut(rule, "=")
				res.Errors = append(res.Errors, FieldError{Field: f.Name, Rule: name, Message: msg})
				break
			}
		}
	}
	return res
}

func check(rule, label, val string) (string, bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")
	if name == "required" {
		return label + " is required.", strings.TrimSpace(val) != ""
	}
	if val == "" {
		return "", true
	}
	switch name {
	case "max":
		n, _ := strconv.Atoi(arg)
		return fmt.Sprintf("%s must be at most %d characters.", label, n), utf8.RuneCountInString(val) <= n
	case "min":
		n, _ := strconv.Atoi(arg)
		return fmt.Sprintf("%s must be at least %d characters.", label, n), utf8.RuneCountInString(val) >= n
	case "email":
		return "A valid email address is required.", IsValidEmail(val)
	case "httpurl":
		return label + " must be a valid http or https URL.", IsValidHTTPURL(val)
	case "objectid":
		return label + " must be a valid ID.", IsValidObjectID(val)
	case "studypath":
		return label + " must be 2 to 20 lowercase letters, Korean characters, digits, '-' or '_'.", IsValidStudyPath(val)
	case "nickname":
		return label + " must be 2 to 20 lowercase letters, Korean characters, digits, '-' or '_'.", IsValidNickname(val)
	default:
		panic("inputval: unknown rule " + name)
	}
}

// IsValidEmail accepts a bare addr-spec (no display name).
// Single-label domains such as "localhost" are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n<>()[]\\,;:\"") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	for _, label := range strings.Split(domain, ".") {
		for _, r := range label {
			if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return false
			}
		}
	}
	return true
}

// IsValidHTTPURL reports whether s, trimmed, is an absolute http(s) URL.
func IsValidHTTPURL(s string) bool {
	return urlutil.IsValidAbsHTTPURL(strings.TrimSpace(s))
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// IsValidStudyPath reports whether s is usable as a study URL path.
func IsValidStudyPath(s string) bool {
	return models.StudyPathRE.MatchString(s)
}

// IsValidNickname reports whether s is an acceptable account nickname.
func IsValidNickname(s string) bool {
	return models.NicknameRE.MatchString(s)
}
