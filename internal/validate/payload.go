// Package validate checks signup and login bodies before any handler runs.
// Each check reports only the first rule a body breaks.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"gatekeeper/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/mcnijman/go-emailaddress"
	"golang.org/x/net/publicsuffix"
)

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

const MsgPasswordComplexity = "Password must contain at least one uppercase letter, one number, and one special character."

type Signup struct {
	Email    string
	Password string
	FullName string
}

type Login struct {
	Email    string
	Password string
}

// Pointer fields keep "missing" apart from "empty". Field order is check order.
// maxbytes=72 is bcrypt's input limit.
type signupForm struct {
	Email    *string `json:"email" validate:"required,min=1,emailaddr"`
	Password *string `json:"password" validate:"required,min=1,jsmin=7,maxbytes=72,pwcomplex"`
	FullName *string `json:"fullName"`
}

type loginForm struct {
	Email    *string `json:"email" validate:"required,min=1,emailaddr"`
	Password *string `json:"password" validate:"required,min=1"`
}

var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("emailaddr", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	// lengths as JavaScript counts them: UTF-16 code units
	must("jsmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(utf16.Encode([]rune(fl.Field().String()))) >= n
	})
	must("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	must("pwcomplex", func(fl validator.FieldLevel) bool {
		return complexPassword(fl.Field().String())
	})
	return v
}

type object map[string]json.RawMessage

func decode(body []byte) (object, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return object{}, nil
	}

	var obj object
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, apperr.Validation("Invalid request body")
	}
	if dec.More() {
		return nil, apperr.Validation("Invalid request body")
	}
	return obj, nil
}

func ParseSignup(body []byte) (Signup, error) {
	obj, err := decode(body)
	if err != nil {
		return Signup{}, err
	}

	var f signupForm
	if f.Email, err = obj.str("email"); err != nil {
		return Signup{}, err
	}
	if f.Password, err = obj.str("password"); err != nil {
		return Signup{}, err
	}
	if f.FullName, err = obj.str("fullName"); err != nil {
		return Signup{}, err
	}
	if err := check(&f); err != nil {
		return Signup{}, err
	}
	if err := obj.onlyKeys("email", "password", "fullName"); err != nil {
		return Signup{}, err
	}

	p := Signup{Email: *f.Email, Password: *f.Password}
	if f.FullName != nil {
		p.FullName = *f.FullName
	}
	return p, nil
}

func ParseLogin(body []byte) (Login, error) {
	obj, err := decode(body)
	if err != nil {
		return Login{}, err
	}

	var f loginForm
	if f.Email, err = obj.str("email"); err != nil {
		return Login{}, err
	}
	if f.Password, err = obj.str("password"); err != nil {
		return Login{}, err
	}
	if err := check(&f); err != nil {
		return Login{}, err
	}
	if err := obj.onlyKeys("email", "password"); err != nil {
		return Login{}, err
	}
	return Login{Email: *f.Email, Password: *f.Password}, nil
}

// check runs the struct rules and reports the first failing field.
func check(form any) error {
	err := checker.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return apperr.Validation(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	case "emailaddr":
		return fmt.Sprintf("%q must be a valid email", field)
	case "jsmin":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%q length must be less than or equal to %s bytes long", field, fe.Param())
	case "pwcomplex":
		return MsgPasswordComplexity
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func complexPassword(pw string) bool {
	var upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && digit && symbol
}

// ValidEmail reports whether s is a syntactically valid address whose top-level
// domain is in the public suffix list. No DNS lookups.
func ValidEmail(s string) bool {
	if s != strings.TrimFunc(s, unicode.IsSpace) {
		return false
	}
	addr, err := emailaddress.Parse(s)
	if err != nil || addr.LocalPart == "" {
		return false
	}

	domain := strings.ToLower(addr.Domain)
	if strings.HasPrefix(domain, "[") || !strings.Contains(domain, ".") ||
		strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	_, icann := publicsuffix.PublicSuffix(domain)
	return icann
}

// str returns the value of key if present. Present keys must hold a JSON string.
func (o object) str(key string) (*string, error) {
	raw, ok := o[key]
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, apperr.Validation(fmt.Sprintf("%q must be a string", key))
	}
	return &s, nil
}

func (o object) onlyKeys(allowed ...string) error {
	var extra []string
	for k := range o {
		if !slices.Contains(allowed, k) {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return apperr.Validation(fmt.Sprintf("%q is not allowed", extra[0]))
}

type ctxKey int

const (
	signupKey ctxKey = iota
	loginKey
)

func WithSignup(ctx context.Context, p Signup) context.Context {
	return context.WithValue(ctx, signupKey, p)
}

func SignupFromContext(ctx context.Context) (Signup, bool) {
	p, ok := ctx.Value(signupKey).(Signup)
	return p, ok
}

func WithLogin(ctx context.Context, p Login) context.Context {
	return context.WithValue(ctx, loginKey, p)
}

func LoginFromContext(ctx context.Context) (Login, bool) {
	p, ok := ctx.Value(loginKey).(Login)
	return p, ok
}
