package enums

import "fmt"

// SecurityQuestion identifies one of the fixed recovery questions an account
// holder answers at registration.
type SecurityQuestion string

const (
	SecurityQuestionMothersMaidenName SecurityQuestion = "mothers_maiden_name"
	SecurityQuestionFirstPetName      SecurityQuestion = "first_pet_name"
	SecurityQuestionFavoriteTeacher   SecurityQuestion = "favorite_teacher"
	SecurityQuestionBirthCity         SecurityQuestion = "birth_city"
	SecurityQuestionFavoriteBook      SecurityQuestion = "favorite_book"
)

var validSecurityQuestions = []SecurityQuestion{
	SecurityQuestionMothersMaidenName,
	SecurityQuestionFirstPetName,
	SecurityQuestionFavoriteTeacher,
	SecurityQuestionBirthCity,
	SecurityQuestionFavoriteBook,
}

var securityQuestionDescriptions = map[SecurityQuestion]string{
	SecurityQuestionMothersMaidenName: "What is your mother's maiden name?",
	SecurityQuestionFirstPetName:      "What was the name of your first pet?",
	SecurityQuestionFavoriteTeacher:   "Who was your favorite teacher?",
	SecurityQuestionBirthCity:         "In which city were you born?",
	SecurityQuestionFavoriteBook:      "What is your favorite book?",
}

// String implements fmt.Stringer.
func (q SecurityQuestion) String() string {
	return string(q)
}

// IsValid reports whether the value is a known SecurityQuestion.
func (q SecurityQuestion) IsValid() bool {
	for _, candidate := range validSecurityQuestions {
		if candidate == q {
			return true
		}
	}
	return false
}

// Description returns the human-readable prompt for the question.
func (q SecurityQuestion) Description() string {
	if desc, ok := securityQuestionDescriptions[q]; ok {
		return desc
	}
	return "Unknown security question"
}

// ParseSecurityQuestion converts raw input into a SecurityQuestion.
func ParseSecurityQuestion(value string) (SecurityQuestion, error) {
	for _, candidate := range validSecurityQuestions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid security question %q", value)
}
