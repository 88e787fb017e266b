package domain

import "strings"

// CustomerOrderSubmission is the customer form posted from the admin page
type CustomerOrderSubmission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
}

// RequiredCustomerFields is the order in which missing fields are reported
var RequiredCustomerFields = []string{
	"firstName", "lastName", "email", "phone", "address1", "city", "province", "country", "zip",
}

func (s *CustomerOrderSubmission) fieldValue(name string) string {
	switch name {
	case "firstName":
		return s.FirstName
	case "lastName":
		return s.LastName
	case "email":
		return s.Email
	case "phone":
		return s.Phone
	case "address1":
		return s.Address1
	case "city":
		return s.City
	case "province":
		return s.Province
	case "country":
		return s.Country
	case "zip":
		return s.Zip
	}
	return ""
}

// MissingFields returns the required fields that are blank
func (s *CustomerOrderSubmission) MissingFields() []string {
	var missing []string
	for _, name := range RequiredCustomerFields {
		if strings.TrimSpace(s.fieldValue(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Validate returns a *ValidationError when any required field is blank
func (s *CustomerOrderSubmission) Validate() error {
	if missing := s.MissingFields(); len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}
	return nil
}
