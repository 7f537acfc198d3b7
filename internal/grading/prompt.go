package grading

import (
	"fmt"
	"strings"
)

// gradingSystemPrompt pins the response format. The schema must match
// models.GradingReport; the total_score rule is the contract checked by
// ScoreSumConsistent downstream.
const gradingSystemPrompt = `You are an expert evaluator grading student answers against an answer key.
Evaluate each student response based on the marking scheme provided in the answer key. Verify whether the required points are awarded for the corresponding criteria and ensure that the content is sufficiently detailed and comprehensive for the allocated marks.
The output must be in JSON format following this schema:
{
    "total_score": ,
    "total_possible": ,
    "percentage": ,
    "questions": [
        {
            "question_number": ,
            "points_earned": ,
            "points_possible": ,
            "justification": "",
            "feedback": ""
        }
        // More items for each question...
    ]
}
The total_score should be the sum of points_earned for each question.`

// buildGradingPrompt assembles the user message from the answer key and the
// merged student transcript.
func buildGradingPrompt(answerKey, studentAnswer string) string {
	var prompt strings.Builder

	prompt.WriteString("ANSWER KEY:\n")
	prompt.WriteString(answerKey)
	prompt.WriteString("\n\nSTUDENT ANSWER:\n")
	prompt.WriteString(studentAnswer)
	prompt.WriteString("\n\nInstructions:\n")
	fmt.Fprintln(&prompt, "1. Compare each student response to the corresponding question in the answer key.")
	fmt.Fprintln(&prompt, "2. Award points based on how well the student answer matches the criteria in the marking scheme.")
	fmt.Fprintln(&prompt, "3. Provide brief justification for each score.")
	fmt.Fprintln(&prompt, "4. Calculate the total score earned correctly.")
	fmt.Fprintln(&prompt, "5. Provide feedback for each question.")

	return prompt.String()
}
