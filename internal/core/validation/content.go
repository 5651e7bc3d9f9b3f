package validation

// ValidateFAQFields validates required fields for an FAQ entry.
func ValidateFAQFields(question, answer string) (field, message string) {
	if question == "" {
		return "question", "question is required"
	}
	if answer == "" {
		return "answer", "answer is required"
	}
	return "", ""
}

// ValidateTestimonialFields validates required fields for a testimonial.
func ValidateTestimonialFields(author, quote string, rating int) (field, message string) {
	if author == "" {
		return "author", "author is required"
	}
	if quote == "" {
		return "quote", "quote is required"
	}
	if rating < 1 || rating > 5 {
		return "rating", "rating must be between 1 and 5"
	}
	return "", ""
}
