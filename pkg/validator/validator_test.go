package validator

import "testing"

type registerPatientInput struct {
	Name   string `validate:"required,min=2"`
	Phone  string `validate:"required,len=10,numeric"`
	Gender string `validate:"omitempty,oneof=male female other"`
}

func TestValidateRegisterPatientInput(t *testing.T) {
	cv := NewValidator()

	tests := []struct {
		name    string
		input   registerPatientInput
		wantErr bool
	}{
		{"valid", registerPatientInput{Name: "Asha Rao", Phone: "9876543210", Gender: "female"}, false},
		{"valid without gender", registerPatientInput{Name: "Ravi", Phone: "9876543210"}, false},
		{"missing name", registerPatientInput{Phone: "9876543210"}, true},
		{"short phone", registerPatientInput{Name: "Asha", Phone: "12345"}, true},
		{"non-numeric phone", registerPatientInput{Name: "Asha", Phone: "98765abcde"}, true},
		{"bad gender", registerPatientInput{Name: "Asha", Phone: "9876543210", Gender: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cv.Validate(&tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	cv := NewValidator()

	err := cv.Validate(&registerPatientInput{Phone: "12345"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	formatted := cv.FormatValidationErrors(err)
	if _, ok := formatted["Name"]; !ok {
		t.Error("expected error for Name")
	}
	if _, ok := formatted["Phone"]; !ok {
		t.Error("expected error for Phone")
	}
}
