// Package fixtures loads the data-driven registration cases.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

var (
	//go:embed registration.json
	registrationJSON []byte

	//go:embed schema.json
	schemaJSON []byte
)

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// RegistrationCase is one registration attempt and the message it must produce.
// A nil field is generated by the register page.
type RegistrationCase struct {
	Name            string  `json:"name"`
	Username        *string `json:"username,omitempty"`
	Firstname       *string `json:"firstname,omitempty"`
	Lastname        *string `json:"lastname,omitempty"`
	Password        *string `json:"password,omitempty"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
	Message         string  `json:"message"`
}

// Input converts the case into register form input.
func (c RegistrationCase) Input() pages.RegisterInput {
	return pages.RegisterInput{
		Username:        optional(c.Username),
		FirstName:       optional(c.Firstname),
		LastName:        optional(c.Lastname),
		Password:        optional(c.Password),
		ConfirmPassword: optional(c.ConfirmPassword),
	}
}

func optional(s *string) pages.Optional[string] {
	if s == nil {
		return pages.Optional[string]{}
	}
	return pages.Some(*s)
}

// Registration returns the embedded default cases.
func Registration() ([]RegistrationCase, error) {
	return ParseRegistration(registrationJSON)
}

// LoadRegistration reads cases from path.
func LoadRegistration(path string) ([]RegistrationCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registration fixture: %w", err)
	}
	return ParseRegistration(data)
}

// ParseRegistration validates data against the fixture schema and decodes it.
func ParseRegistration(data []byte) ([]RegistrationCase, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "registration fixture is not valid JSON", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, errs.New(errs.InvalidArgument, "registration fixture: "+strings.Join(problems, "; "))
	}

	var cases []RegistrationCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "decode registration fixture", err)
	}
	return cases, nil
}
