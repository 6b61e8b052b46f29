package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/deskspace/deskspace/internal/models"
	"github.com/go-viper/mapstructure/v2"
)

// PropertyInput is the owner-editable part of a property, in one shape
// whether it arrived as JSON or as multipart form fields.
type PropertyInput struct {
	Name         string        `json:"name" validate:"required,max=200"`
	Type         string        `json:"type" validate:"required"`
	Description  string        `json:"description"`
	Location     LocationInput `json:"location"`
	DeskCapacity int           `json:"desk_capacity" validate:"gte=0"`
	Rooms        int           `json:"rooms" validate:"gte=0"`
	SquareFeet   int           `json:"square_feet" validate:"gte=0"`
	Amenities    []string      `json:"amenities"`
	Rates        RatesInput    `json:"rates"`
	Contact      ContactInput  `json:"contact"`
	// Images are already-hosted image URLs kept alongside new uploads.
	Images []string `json:"images" validate:"dive,http_url"`

	// ImagesProvided is set when the request carried an images field at all.
	ImagesProvided bool `json:"-"`
}

type LocationInput struct {
	Street  string `json:"street"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

type RatesInput struct {
	Daily   *float64 `json:"daily" validate:"omitempty,gte=0"`
	Weekly  *float64 `json:"weekly" validate:"omitempty,gte=0"`
	Monthly *float64 `json:"monthly" validate:"omitempty,gte=0"`
}

type ContactInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// TreeFromJSON decodes a JSON object body. Dotted keys are expanded the same
// way as form fields.
func TreeFromJSON(body []byte) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, invalid("", "request body must be a JSON object")
	}
	if raw == nil {
		return nil, invalid("", "request body must be a JSON object")
	}
	tree := map[string]any{}
	for k, v := range raw {
		if err := setPath(tree, k, v); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// TreeFromForm turns flat form fields such as "location.city" or
// "amenities[]" into a nested tree. Repeated fields become lists.
func TreeFromForm(values url.Values) (map[string]any, error) {
	tree := map[string]any{}
	for k, vs := range values {
		key := strings.TrimSuffix(k, "[]")
		var v any
		switch {
		case len(vs) == 1 && key == k:
			v = vs[0]
		default:
			list := make([]any, 0, len(vs))
			for _, s := range vs {
				if s != "" {
					list = append(list, s)
				}
			}
			v = list
		}
		if err := setPath(tree, key, v); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func setPath(tree map[string]any, key string, v any) error {
	parts := strings.Split(key, ".")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p]
		if !ok {
			m := map[string]any{}
			node[p] = m
			node = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return invalid(key, "conflicts with field %q", p)
		}
		node = m
	}
	last := parts[len(parts)-1]
	if existing, ok := node[last].(map[string]any); ok {
		incoming, ok := v.(map[string]any)
		if !ok {
			return invalid(key, "conflicts with nested fields")
		}
		for k, iv := range incoming {
			existing[k] = iv
		}
		return nil
	}
	node[last] = v
	return nil
}

// NormalizePropertyInput decodes a field tree into a PropertyInput and
// validates it. Numeric strings are parsed base 10 and empty ones read as 0.
func NormalizePropertyInput(tree map[string]any) (PropertyInput, error) {
	var in PropertyInput
	if err := coerceNumbers(tree, reflect.TypeOf(in), ""); err != nil {
		return in, err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &in,
		DecodeHook:       jsonNumberHook,
	})
	if err != nil {
		return in, upstream("build decoder", err)
	}
	if err := dec.Decode(tree); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return in, ve
		}
		return in, invalid("", "%s", decodeMessage(err))
	}
	_, in.ImagesProvided = tree["images"]

	in.Name = strings.TrimSpace(in.Name)
	in.Location.City = strings.TrimSpace(in.Location.City)
	in.Amenities = compactStrings(in.Amenities)
	in.Images = compactStrings(in.Images)
	if in.Amenities == nil {
		in.Amenities = []string{}
	}

	if err := checkStruct(in); err != nil {
		return in, err
	}
	typ, ok := models.CanonicalWorkspaceType(in.Type)
	if !ok {
		return in, invalid("type", "must be one of %s", strings.Join(models.WorkspaceTypes, ", "))
	}
	in.Type = typ
	return in, nil
}

func decodeMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, "error(s) decoding:"); i >= 0 {
		msg = strings.TrimSpace(msg[i+len("error(s) decoding:"):])
	}
	if i := strings.LastIndex(msg, "decoding failed due to the following error(s):"); i >= 0 {
		msg = strings.TrimSpace(msg[i+len("decoding failed due to the following error(s):"):])
	}
	return strings.TrimPrefix(msg, "* ")
}

func compactStrings(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonNumberHook(from, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	return n.String(), nil
}

// coerceNumbers rewrites string and json.Number values in tree in place for
// every numeric field of t, so a bad value is reported by its dotted path.
func coerceNumbers(tree map[string]any, t reflect.Type, prefix string) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		v, ok := tree[name]
		if !ok {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			if m, ok := v.(map[string]any); ok {
				if err := coerceNumbers(m, ft, prefix+name+"."); err != nil {
					return err
				}
			}
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
			n, err := parseNumber(prefix+name, v, ft.Kind())
			if err != nil {
				return err
			}
			tree[name] = n
		}
	}
	return nil
}

// parseNumber reads s in base 10. An empty value is 0.
func parseNumber(field string, v any, kind reflect.Kind) (any, error) {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	default:
		return v, nil
	}
	if kind == reflect.Float32 || kind == reflect.Float64 {
		if s == "" {
			return float64(0), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || strings.ContainsAny(s, "xX") || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalid(field, "must be a number, got %q", s)
		}
		return f, nil
	}
	if s == "" {
		return int64(0), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, invalid(field, "must be a whole number, got %q", s)
	}
	return n, nil
}
