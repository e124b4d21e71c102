package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// ValidationError is a problem with one config file or key. Location is the
// file path, or the environment variable name for env overrides.
type ValidationError struct {
	Location string
	Line     int
	Column   int
	Key      string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Location, e.Line, e.Column, e.Message)
	case e.Key != "":
		return fmt.Sprintf("%s: %s %s", e.Location, e.Key, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Location, e.Message)
	}
}

// ValidationErrors collects every invalid key of a configuration.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateYAMLSyntax checks that a config file parses as YAML. A missing or
// empty file is valid: the defaults apply.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if os.IsPermission(err) {
			return &ValidationError{Location: filePath, Message: "permission denied"}
		}
		return &ValidationError{Location: filePath, Message: err.Error()}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			Location: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 && node.Content[0].Kind != yaml.MappingNode {
		return &ValidationError{
			Location: filePath,
			Line:     node.Content[0].Line,
			Column:   node.Content[0].Column,
			Message:  "config must be a mapping of keys to values",
		}
	}
	return nil
}

// keyLocator names where a config key was set.
type keyLocator func(key string) string

// validateRawValues checks values that cannot be judged after unmarshalling.
// A bare number for watch_debounce would silently decode as nanoseconds.
func validateRawValues(k *koanf.Koanf, locate keyLocator) error {
	if !k.Exists("watch_debounce") {
		return nil
	}
	raw := k.Get("watch_debounce")
	verr := &ValidationError{Location: locate("watch_debounce"), Key: "watch_debounce"}
	switch v := raw.(type) {
	case time.Duration:
		return nil
	case string:
		if _, err := time.ParseDuration(strings.TrimSpace(v)); err != nil {
			verr.Message = fmt.Sprintf("must be a duration such as 250ms or 1s, got %q", v)
			return verr
		}
		return nil
	default:
		if fmt.Sprint(raw) == "0" {
			return nil
		}
		verr.Message = fmt.Sprintf("must be a duration with a unit such as 250ms, got %v", raw)
		return verr
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateConfigValues checks every key against its constraints and reports
// all failures at once, in field order.
func ValidateConfigValues(cfg *Configuration, locate keyLocator) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Location: locate(""), Message: err.Error()}
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			Location: locate(fe.Field()),
			Key:      fe.Field(),
			Message:  describe(fe),
		})
	}
	return errs
}

// describe words a failed constraint for the key it belongs to.
func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "changelog":
		return "must name the changelog file, e.g. CHANGELOG.md"
	case "max_parallel":
		return fmt.Sprintf("must be between 1 and 64 files checked at once, got %v", fe.Value())
	case "watch_debounce":
		return fmt.Sprintf("must not be negative, got %v", fe.Value())
	}

	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %q",
			strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
}

// extractLineColumn reads the position out of a yaml.v3 error such as
// "yaml: line 5: could not find expected ':'". Returns 0, 0 if there is none.
func extractLineColumn(errMsg string) (line, column int) {
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError drops the "yaml: line X:" prefix.
func cleanYAMLError(errMsg string) string {
	if !strings.HasPrefix(errMsg, "yaml:") {
		return errMsg
	}
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 {
		return errMsg[idx+2:]
	}
	return errMsg
}
