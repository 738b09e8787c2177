package naming

import "testing"

func TestCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Name", "name"},
		{"name", "name"},
		{"ID", "id"},
		{"URLValue", "urlValue"},
		{"CustomName", "customName"},
		{"ABc", "aBc"},
		{"X", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CamelCase.ConvertName(tt.input); got != tt.expected {
				t.Errorf("CamelCase(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWordPolicies(t *testing.T) {
	tests := []struct {
		input string
		snake string
		upper string
		kebab string
	}{
		{"CamelCase", "camel_case", "CAMEL_CASE", "camel-case"},
		{"UserID", "user_id", "USER_ID", "user-id"},
		{"URLValue", "url_value", "URL_VALUE", "url-value"},
		{"Field2Name", "field2_name", "FIELD2_NAME", "field2-name"},
		{"already_snake", "already_snake", "ALREADY_SNAKE", "already-snake"},
		{"lower", "lower", "LOWER", "lower"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SnakeCase.ConvertName(tt.input); got != tt.snake {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.input, got, tt.snake)
			}
			if got := UpperSnakeCase.ConvertName(tt.input); got != tt.upper {
				t.Errorf("UpperSnakeCase(%q) = %q, want %q", tt.input, got, tt.upper)
			}
			if got := KebabCase.ConvertName(tt.input); got != tt.kebab {
				t.Errorf("KebabCase(%q) = %q, want %q", tt.input, got, tt.kebab)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("camel")
	if !ok || p == nil {
		t.Fatalf("Lookup(camel) = %v, %v", p, ok)
	}
	if got := Apply(p, "Value"); got != "value" {
		t.Errorf("Apply = %q, want value", got)
	}

	p, ok = Lookup("none")
	if !ok || p != nil {
		t.Errorf("Lookup(none) = %v, %v, want nil, true", p, ok)
	}
	if got := Apply(p, "Value"); got != "Value" {
		t.Errorf("Apply(nil) = %q, want Value", got)
	}

	if _, ok := Lookup("pascal"); ok {
		t.Error("Lookup(pascal) should fail")
	}
}
