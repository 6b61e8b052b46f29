package services

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestTreeFromFormNesting(t *testing.T) {
	tree, err := TreeFromForm(url.Values{
		"location.city":    {"Bath"},
		"location.zipcode": {"BA1"},
		"amenities[]":      {"WiFi"},
		"contact.email":    {"a@b.co"},
	})
	if err != nil {
		t.Fatal(err)
	}
	loc, ok := tree["location"].(map[string]any)
	if !ok || loc["city"] != "Bath" || loc["zipcode"] != "BA1" {
		t.Fatalf("location = %#v", tree["location"])
	}
	if list, ok := tree["amenities"].([]any); !ok || len(list) != 1 {
		t.Errorf("amenities = %#v", tree["amenities"])
	}
}

func TestTreeConflicts(t *testing.T) {
	_, err := TreeFromForm(url.Values{"location": {"Bath"}, "location.city": {"Bath"}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestJSONAndFormNormalizeAlike(t *testing.T) {
	jsonTree, err := TreeFromJSON([]byte(`{
		"name": "Corner Office",
		"type": "private-office",
		"location": {"city": "Bristol", "state": "Avon"},
		"rooms": 2,
		"rates.monthly": 900.5,
		"amenities": ["Parking"]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	formTree, err := TreeFromForm(url.Values{
		"name":           {"Corner Office"},
		"type":           {"Private Office"},
		"location.city":  {"Bristol"},
		"location.state": {"Avon"},
		"rooms":          {"2"},
		"rates.monthly":  {"900.5"},
		"amenities":      {"Parking"},
	})
	if err != nil {
		t.Fatal(err)
	}

	a, err := NormalizePropertyInput(jsonTree)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	b, err := NormalizePropertyInput(formTree)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if a.Type != "Private Office" || b.Type != a.Type {
		t.Errorf("type %q vs %q", a.Type, b.Type)
	}
	if a.Rooms != 2 || b.Rooms != 2 || *a.Rates.Monthly != 900.5 || *b.Rates.Monthly != 900.5 {
		t.Errorf("numbers differ: %+v / %+v", a, b)
	}
	if a.Location != b.Location || len(a.Amenities) != 1 || len(b.Amenities) != 1 {
		t.Errorf("nested fields differ: %+v / %+v", a, b)
	}
}

func TestNormalizeRejects(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"name":     "Desk",
			"type":     "Hot Desk",
			"location": map[string]any{"city": "Hull"},
		}
	}
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing name", func(m map[string]any) { delete(m, "name") }},
		{"missing city", func(m map[string]any) { m["location"] = map[string]any{"street": "1 High St"} }},
		{"unknown type", func(m map[string]any) { m["type"] = "Treehouse" }},
		{"negative rooms", func(m map[string]any) { m["rooms"] = "-1" }},
		{"garbage number", func(m map[string]any) { m["desk_capacity"] = "lots" }},
		{"hex number", func(m map[string]any) { m["desk_capacity"] = "0x10" }},
		{"negative rate", func(m map[string]any) { m["rates"] = map[string]any{"daily": "-3"} }},
		{"bad contact email", func(m map[string]any) { m["contact"] = map[string]any{"email": "nope"} }},
		{"bad image url", func(m map[string]any) { m["images"] = []any{"ftp://x/y.png"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			if _, err := NormalizePropertyInput(m); !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNormalizeNumberErrorsNameTheField(t *testing.T) {
	tests := []struct {
		field string
		tree  map[string]any
	}{
		{"desk_capacity", map[string]any{"desk_capacity": "lots"}},
		{"rates.daily", map[string]any{"rates": map[string]any{"daily": "cheap"}}},
		{"rates.weekly", map[string]any{"rates": map[string]any{"weekly": "NaN"}}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			tt.tree["name"] = "Desk"
			tt.tree["type"] = "Hot Desk"
			tt.tree["location"] = map[string]any{"city": "Hull"}
			_, err := NormalizePropertyInput(tt.tree)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("field = %q, message %q", ve.Field, err.Error())
			}
		})
	}
}

func TestNormalizeEmptyNumbersAreZero(t *testing.T) {
	in, err := NormalizePropertyInput(map[string]any{
		"name":          "Desk",
		"type":          "hotdesk",
		"location":      map[string]any{"city": "Hull"},
		"desk_capacity": "",
		"square_feet":   " 120 ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if in.DeskCapacity != 0 || in.SquareFeet != 120 || in.Type != "Hot Desk" {
		t.Errorf("got %+v", in)
	}
	if in.ImagesProvided {
		t.Error("images not supplied")
	}
}

func TestTreeFromJSONRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[]`, `"x"`, `null`, `{`} {
		if _, err := TreeFromJSON([]byte(body)); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v", body, err)
		}
	}
}
