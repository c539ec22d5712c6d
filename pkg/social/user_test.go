package social

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUserGet(t *testing.T) {
	user := &User{}

	for _, name := range Attributes {
		v, err := user.Get(name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if v != nil {
			t.Errorf("Expected %q to be unset, got %q", name, *v)
		}
	}

	_, err := user.Get("age")
	if !errors.Is(err, ErrNoSuchAttribute) {
		t.Errorf("Expected ErrNoSuchAttribute, got %v", err)
	}
	if !errors.Is(err, ErrSocial) {
		t.Errorf("Expected ErrSocial, got %v", err)
	}
}

func TestUserMap(t *testing.T) {
	user := &User{}

	err := user.Map(map[string]string{
		"id":       "42",
		"name":     "Ada Lovelace",
		"nickname": "ada",
	})
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}

	if deref(user.ID) != "42" {
		t.Errorf("Expected id '42', got %s", deref(user.ID))
	}
	if deref(user.Nickname) != "ada" {
		t.Errorf("Expected nickname 'ada', got %s", deref(user.Nickname))
	}
	if user.Email != nil {
		t.Errorf("Expected email to stay unset, got %s", *user.Email)
	}

	name, _ := user.Get(AttrName)
	if deref(name) != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got %s", deref(name))
	}

	// Later calls overwrite.
	if err := user.Map(map[string]string{"id": "43"}); err != nil {
		t.Fatalf("Map() failed: %v", err)
	}
	if deref(user.ID) != "43" {
		t.Errorf("Expected id '43', got %s", deref(user.ID))
	}
}

func TestUserMapRejectsUnknownKey(t *testing.T) {
	user := &User{}

	err := user.Map(map[string]string{
		"email": "ada@example.com",
		"phone": "555-0100",
	})
	if !errors.Is(err, ErrCannotMapAttribute) {
		t.Fatalf("Expected ErrCannotMapAttribute, got %v", err)
	}
	if !contains(err.Error(), `"phone"`) {
		t.Errorf("Expected error to name the key, got %v", err)
	}
	if user.Email != nil {
		t.Error("Expected rejected Map to write nothing")
	}
}

func TestUserToMap(t *testing.T) {
	user := &User{}
	if err := user.Map(map[string]string{"id": "1", "email": "a@example.com"}); err != nil {
		t.Fatal(err)
	}

	m := user.ToMap()
	if len(m) != len(Attributes) {
		t.Fatalf("Expected %d keys, got %d", len(Attributes), len(m))
	}
	if m["id"] != "1" || m["email"] != "a@example.com" {
		t.Errorf("Unexpected values: %v", m)
	}
	if m["name"] != nil || m["avatar"] != nil {
		t.Errorf("Expected unset attributes to map to nil: %v", m)
	}
}

func TestUserRawAndJSON(t *testing.T) {
	user := &User{}
	raw := map[string]any{"login": "octocat", "id": float64(1)}
	user.SetRaw(raw)
	if err := user.Map(map[string]string{"nickname": "octocat"}); err != nil {
		t.Fatal(err)
	}

	if got, ok := user.Raw.(map[string]any); !ok || got["login"] != "octocat" {
		t.Errorf("Expected raw payload to be kept, got %v", user.Raw)
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"id":null,"name":null,"nickname":"octocat","email":null,"avatar":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
