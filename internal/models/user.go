package models

// UpsertUserRequest carries the dashboard's user form. Aliased field names
// (first_name/firstName, birthday/birthDate) come from older client builds.
type UpsertUserRequest struct {
	ID          string      `json:"id"`
	UID         string      `json:"uid"`
	FirstName   string      `json:"first_name"`
	FirstNameCC string      `json:"firstName"`
	LastName    string      `json:"last_name"`
	LastNameCC  string      `json:"lastName"`
	Email       string      `json:"email"`
	Gender      string      `json:"gender"`
	Birthday    interface{} `json:"birthday"`
	BirthDate   interface{} `json:"birthDate"`
	Photos      interface{} `json:"photos"` // {main, gallery} object or flat array
	Status      string      `json:"status"`
	Interests   []string    `json:"interests"`
	Interest    []string    `json:"interest"`
	InterestedIn string     `json:"interestedIn"`
	Preferences *struct {
		InterestedIn string `json:"interestedIn"`
	} `json:"preferences"`
}

func (r *UpsertUserRequest) First() string {
	if r.FirstName != "" {
		return r.FirstName
	}
	return r.FirstNameCC
}

func (r *UpsertUserRequest) Last() string {
	if r.LastName != "" {
		return r.LastName
	}
	return r.LastNameCC
}

func (r *UpsertUserRequest) InterestedInValue() string {
	if r.Preferences != nil && r.Preferences.InterestedIn != "" {
		return r.Preferences.InterestedIn
	}
	return r.InterestedIn
}

func (r *UpsertUserRequest) InterestList() []string {
	if len(r.Interests) > 0 {
		return r.Interests
	}
	return r.Interest
}
