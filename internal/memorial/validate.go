package memorial

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Fields carries the user-editable memorial content. Date values are calendar
// date strings without a time component.
type Fields struct {
	FullName       string `validate:"required,max=200"`
	BirthDate      string `validate:"required"`
	DeathDate      string `validate:"required"`
	Location       string `validate:"required,max=300"`
	Biography      string `validate:"required,max=10000"`
	VideoURL       string `validate:"omitempty,url"`
	TributeMessage string `validate:"omitempty,max=5000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldNames = map[string]string{
	"FullName":       "full_name",
	"BirthDate":      "birth_date",
	"DeathDate":      "death_date",
	"Location":       "location",
	"Biography":      "biography",
	"VideoURL":       "video_url",
	"TributeMessage": "tribute_message",
}

var fieldLabels = map[string]string{
	"full_name":       "Name",
	"birth_date":      "Birth date",
	"death_date":      "Death date",
	"location":        "Location",
	"biography":       "Biography",
	"video_url":       "Video URL",
	"tribute_message": "Tribute message",
}

// normalized returns a copy with surrounding whitespace trimmed from every field.
func (f Fields) normalized() Fields {
	return Fields{
		FullName:       strings.TrimSpace(f.FullName),
		BirthDate:      strings.TrimSpace(f.BirthDate),
		DeathDate:      strings.TrimSpace(f.DeathDate),
		Location:       strings.TrimSpace(f.Location),
		Biography:      strings.TrimSpace(f.Biography),
		VideoURL:       strings.TrimSpace(f.VideoURL),
		TributeMessage: strings.TrimSpace(f.TributeMessage),
	}
}

// validateFields checks the trimmed fields against the schema and, when
// coverRequired is set, demands a cover file. The returned error is a
// *ValidationError with one message per invalid field, or nil.
func validateFields(fields Fields, coverRequired, coverPresent bool) error {
	messages := map[string]string{}

	if err := validate.Struct(fields); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			messages["fields"] = err.Error()
		} else {
			for _, fieldError := range validationErrors {
				name := fieldNames[fieldError.StructField()]
				if name == "" {
					name = fieldError.StructField()
				}
				messages[name] = messageFor(name, fieldError)
			}
		}
	}

	if coverRequired && !coverPresent {
		messages["cover"] = "Cover image is required"
	}

	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Fields: messages}
}

func messageFor(name string, fieldError validator.FieldError) string {
	label := fieldLabels[name]
	if label == "" {
		label = name
	}

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fieldError.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
