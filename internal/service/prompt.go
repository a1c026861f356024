package service

import (
	"fmt"
	"strings"

	"task_tracker/internal/domain"
)

// BuildPrompt asks the generator for a strict JSON classification of one task.
// Title and description are embedded verbatim.
func BuildPrompt(title, description string) string {
	labels := make([]string, len(domain.Labels))
	for i, l := range domain.Labels {
		labels[i] = string(l)
	}

	var b strings.Builder
	b.WriteString("You classify to-do items and break them into steps.\n")
	fmt.Fprintf(&b, "Task title: %s\n", title)
	fmt.Fprintf(&b, "Task description: %s\n\n", description)
	b.WriteString("Respond with ONLY a JSON object of this exact shape:\n")
	b.WriteString(`{"label": "<one word>", "subtasks": ["<step>", "<step>", "<step>"]}` + "\n")
	fmt.Fprintf(&b, "label must be exactly one of: %s.\n", strings.Join(labels, ", "))
	b.WriteString("subtasks must contain 3 to 5 short, actionable steps.\n")
	b.WriteString("Do not add any explanation or prose. Do not wrap the JSON in markdown code fences.\n")
	return b.String()
}
