package notify

import (
	"fmt"
	"strings"
)

// AssignmentMessage builds the subject and body announcing a released task.
func AssignmentMessage(name string, number int, description, dueDate string) (subject, body string) {
	subject = fmt.Sprintf("New Learning Task #%d - %s", number, name)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", name)
	b.WriteString("You have been assigned a new learning task based on your quiz performance.\n\n")
	fmt.Fprintf(&b, "Task #%d\n\n%s\n\n", number, description)
	fmt.Fprintf(&b, "Due Date: %s\n\n", dueDate)
	b.WriteString("To submit your task, reply to this email with your work or use the submit button in the app.\n\n")
	b.WriteString("Keep up the great work!\n")
	return subject, b.String()
}

// SubmissionMessage builds the submission confirmation.
func SubmissionMessage() (subject, body string) {
	return "Task Submission Confirmed",
		"Your task has been successfully submitted and recorded.\n" +
			"We'll review your work and assign the next task soon.\n\n" +
			"Keep up the excellent progress!\n"
}
