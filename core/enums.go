package core

const (
	SexMale   = "MALE"
	SexFemale = "FEMALE"
)

var Sexes = []string{SexMale, SexFemale}

const (
	Monday    = "MONDAY"
	Tuesday   = "TUESDAY"
	Wednesday = "WEDNESDAY"
	Thursday  = "THURSDAY"
	Friday    = "FRIDAY"
)

// SchoolDays are the days lessons can be scheduled on.
var SchoolDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday}

var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
