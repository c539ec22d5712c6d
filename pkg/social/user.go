package social

import "fmt"

// Attribute names of a User, in their canonical order.
const (
	AttrID       = "id"
	AttrName     = "name"
	AttrNickname = "nickname"
	AttrEmail    = "email"
	AttrAvatar   = "avatar"
)

// Attributes is the fixed, ordered attribute set of a User.
var Attributes = []string{AttrID, AttrName, AttrNickname, AttrEmail, AttrAvatar}

// User is the normalized identity returned by Provider.GetUser.
//
// Every attribute is optional; a nil pointer means the vendor did not supply it.
// A new User is built for every GetUser call and belongs to the caller.
type User struct {
	ID       *string `json:"id"`
	Name     *string `json:"name"`
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Avatar   *string `json:"avatar"`

	// Raw is the final, unmodified vendor payload.
	Raw any `json:"-"`
}

func (u *User) field(name string) (**string, bool) {
	switch name {
	case AttrID:
		return &u.ID, true
	case AttrName:
		return &u.Name, true
	case AttrNickname:
		return &u.Nickname, true
	case AttrEmail:
		return &u.Email, true
	case AttrAvatar:
		return &u.Avatar, true
	}
	return nil, false
}

// Get returns the named attribute, nil when it was never set.
func (u *User) Get(name string) (*string, error) {
	f, ok := u.field(name)
	if !ok {
		return nil, fmt.Errorf("%w: the attribute %q does not exist", ErrNoSuchAttribute, name)
	}
	return *f, nil
}

// Map merges attrs into the user. Every key is checked before anything is
// written, so a rejected call leaves the user unchanged.
func (u *User) Map(attrs map[string]string) error {
	for _, name := range sortedKeys(attrs) {
		if _, ok := u.field(name); !ok {
			return fmt.Errorf("%w: cannot map attribute %q to user", ErrCannotMapAttribute, name)
		}
	}
	for name, value := range attrs {
		f, _ := u.field(name)
		v := value
		*f = &v
	}
	return nil
}

// SetRaw stores the vendor payload as is.
func (u *User) SetRaw(payload any) {
	u.Raw = payload
}

// ToMap returns every attribute keyed by name. Unset attributes map to nil.
func (u *User) ToMap() map[string]any {
	out := make(map[string]any, len(Attributes))
	for _, name := range Attributes {
		f, _ := u.field(name)
		if *f == nil {
			out[name] = nil
			continue
		}
		out[name] = **f
	}
	return out
}

func (u *User) set(name string, value *string) {
	if f, ok := u.field(name); ok {
		*f = value
	}
}

// stringPtr returns nil for an empty string.
func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
