package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"MediCall/apperror"
	"MediCall/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payload is a decoded JSON request body.
type Payload = map[string]interface{}

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "is too short",
	"max":      "is too long",
	"gte":      "must not be negative",
	"hhmm":     "must be a time in HH:MM format",
	"weekday":  "must be a day of the week",
}

// ignored keys are owned by the server and never taken from a request body.
var ignored = []string{"_id", "id", "createdBy", "agent", "createdAt", "updatedAt"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.Weekday(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// IsClock reports whether s is a 24 hour HH:MM time.
func IsClock(s string) bool {
	return hhmm.MatchString(s)
}

func OneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// ObjectID parses a hex id, reporting failures against field.
func ObjectID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, apperror.Invalid(field, "must be a valid id")
	}
	return id, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// problems collects field errors found during normalization.
type problems []apperror.FieldError

func (p *problems) add(field, message string) {
	*p = append(*p, apperror.FieldError{Field: field, Message: message})
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return apperror.Validation("", p)
}

func path(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func index(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func dropIgnored(data Payload) {
	for _, k := range ignored {
		delete(data, k)
	}
}

// trim walks the payload, trimming strings and lowercasing email fields.
func trim(v interface{}, key string) interface{} {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if key == "email" {
			s = strings.ToLower(s)
		}
		return s
	case map[string]interface{}:
		for k, val := range t {
			t[k] = trim(val, k)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = trim(val, key)
		}
		return t
	}
	return v
}

func blank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		for _, e := range t {
			if !blank(e) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, e := range t {
			if !blank(e) {
				return false
			}
		}
		return true
	}
	return false
}

// number coerces a numeric string into a float. Blank values are removed.
func number(data Payload, key, field string, p *problems) {
	v, ok := data[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case nil:
		delete(data, key)
	case string:
		if t == "" {
			delete(data, key)
			return
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			p.add(field, "must be a number")
			return
		}
		data[key] = f
	case float64, int, int64:
	default:
		p.add(field, "must be a number")
	}
}

// strip removes blank entries from a string list.
func strip(data Payload, key, field string, p *problems) {
	v, ok := data[key]
	if !ok || v == nil {
		return
	}
	list, ok := v.([]interface{})
	if !ok {
		p.add(field, "must be a list")
		return
	}
	kept := make([]interface{}, 0, len(list))
	for _, e := range list {
		if s, isString := e.(string); isString && s == "" {
			continue
		}
		kept = append(kept, e)
	}
	data[key] = kept
}

func atLeastOne(data Payload, key, field, message string, p *problems) {
	list, ok := data[key].([]interface{})
	if !ok || len(list) == 0 {
		p.add(field, message)
	}
}

// date rewrites a date string as RFC 3339. Blank values are removed.
func date(data Payload, key, field string, p *problems) {
	v, ok := data[key]
	if !ok {
		return
	}
	s, isString := v.(string)
	if v == nil || (isString && s == "") {
		delete(data, key)
		return
	}
	if !isString {
		p.add(field, "must be a valid date")
		return
	}
	t, err := ParseDate(s)
	if err != nil {
		p.add(field, "must be a valid date")
		return
	}
	data[key] = t.Format(time.RFC3339)
}

// composite enforces all-or-nothing objects: an entirely blank object is
// dropped, a partially filled one must carry every required key.
func composite(data Payload, key, field string, required []string, p *problems) {
	v, ok := data[key]
	if !ok {
		return
	}
	if blank(v) {
		delete(data, key)
		return
	}
	obj, isObject := v.(map[string]interface{})
	if !isObject {
		p.add(field, "must be an object")
		return
	}
	for _, r := range required {
		if blank(obj[r]) {
			p.add(path(field, r), fmt.Sprintf("is required when %s is provided", key))
		}
	}
}

// decode copies the normalized payload into a typed input.
func decode(data Payload, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Error marshalling payload")
		return apperror.Unexpected(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.Invalid(typeErr.Field, "must be a "+kindName(typeErr.Type))
		}
		return apperror.Validation("", []apperror.FieldError{{Field: "body", Message: err.Error()}})
	}
	return nil
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		return "number"
	case reflect.Slice:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return t.String()
}

// check runs the struct tags and reports failures by JSON path.
func check(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		log.Error().Err(err).Msg("Error from validator")
		return apperror.Unexpected(err)
	}
	details := make([]apperror.FieldError, 0, len(errs))
	for _, e := range errs {
		details = append(details, apperror.FieldError{Field: fieldPath(e.Namespace()), Message: message(e)})
	}
	return apperror.Validation("", details)
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " item(s)"
		}
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
	}
	if m, ok := messages[e.Tag()]; ok {
		return m
	}
	return "is invalid"
}

// setDoc turns an update input into a $set document of the present fields.
func setDoc(in interface{}) (bson.M, error) {
	raw, err := bson.Marshal(in)
	if err != nil {
		log.Error().Err(err).Msg("Error marshalling update")
		return nil, apperror.Unexpected(err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		log.Error().Err(err).Msg("Error unmarshalling update")
		return nil, apperror.Unexpected(err)
	}
	return set, nil
}

// Status validates a {"status": ...} body against the allowed values.
func Status(data Payload, key string, allowed []string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", apperror.Invalid(key, "is required")
	}
	s, isString := raw.(string)
	if !isString {
		return "", apperror.Invalid(key, "must be a string")
	}
	s = strings.TrimSpace(s)
	if !OneOf(s, allowed) {
		return "", apperror.Invalid(key, "must be one of: "+strings.Join(allowed, ", "))
	}
	return s, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
